// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bureau-release/cmd/bureau-release/cli"
	"github.com/bureau-foundation/bureau-release/lib/release"
)

type resolveParams struct {
	SelectionParams

	JSON bool `flag:"json" desc:"print the resolved target as JSON"`
}

// resolvedTarget is the JSON form of a resolution.
type resolvedTarget struct {
	Package          string   `json:"package"`
	Version          string   `json:"version"`
	Binary           string   `json:"binary"`
	RequiredFeatures []string `json:"required_features"`
	ManifestPath     string   `json:"manifest_path"`
	SourcePath       string   `json:"source_path"`
	WorkspaceRoot    string   `json:"workspace_root"`
	TargetDirectory  string   `json:"target_directory"`
}

func resolveCommand(env Environment) *cli.Command {
	var params resolveParams
	var flagSet *pflag.FlagSet

	return &cli.Command{
		Name:    "resolve",
		Summary: "Show which binary target would be built",
		Description: `Load the Cargo workspace metadata and resolve the package and binary
exactly as "run" would, without building anything.`,
		Usage: "bureau-release resolve [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet = cli.FlagsFromParams("resolve", &params)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}

			logger := env.logger().With("command", "resolve")
			cfg, err := loadSettings(env, env.runtime(logger), params.Config, flagSet)
			if err != nil {
				return err
			}

			dir := firstNonEmpty(cfg.WorkingDirectory, ".")
			metadata, err := env.toolchain(params.Cargo, params.Rustc, logger).Metadata(ctx, dir)
			if err != nil {
				return fmt.Errorf("loading workspace metadata: %w", err)
			}
			target, err := release.Resolve(metadata, cfg.Package, cfg.Binary)
			if err != nil {
				return err
			}

			resolved := resolvedTarget{
				Package:          target.Package,
				Binary:           target.Name,
				RequiredFeatures: target.RequiredFeatures,
				WorkspaceRoot:    metadata.WorkspaceRoot,
				TargetDirectory:  metadata.TargetDirectory,
			}
			for _, candidate := range metadata.Packages {
				if candidate.Name != target.Package {
					continue
				}
				resolved.Version = candidate.Version
				resolved.ManifestPath = candidate.ManifestPath
				for _, binary := range candidate.Binaries() {
					if binary.Name == target.Name {
						resolved.SourcePath = binary.SrcPath
						break
					}
				}
				break
			}
			if params.JSON {
				encoder := json.NewEncoder(env.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(resolved)
			}

			fmt.Fprintf(env.Stdout, "package:  %s %s\n", resolved.Package, resolved.Version)
			fmt.Fprintf(env.Stdout, "binary:   %s\n", resolved.Binary)
			if resolved.SourcePath != "" {
				fmt.Fprintf(env.Stdout, "source:   %s\n", resolved.SourcePath)
			}
			if len(resolved.RequiredFeatures) > 0 {
				fmt.Fprintf(env.Stdout, "features: %s\n", strings.Join(resolved.RequiredFeatures, ","))
			}
			return nil
		},
	}
}
