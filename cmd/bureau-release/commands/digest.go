// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bureau-release/cmd/bureau-release/cli"
	"github.com/bureau-foundation/bureau-release/lib/binhash"
)

type digestParams struct {
	Name      string `flag:"name" desc:"file name written into the line (default: the file's base name)"`
	Algorithm string `flag:"algorithm,a" desc:"digest algorithm: sha256 or blake3 (--check infers it from a .sha256 or .b3 suffix)" default:"sha256"`
	Check     bool   `flag:"check,c" desc:"read a checksum sidecar and verify the files it names"`
}

func digestCommand(env Environment) *cli.Command {
	var params digestParams

	return &cli.Command{
		Name:    "digest",
		Summary: "Print the checksum sidecar line for a file",
		Description: `Hash a file and print the line "run --asset-digest" would upload as
its checksum sidecar. The output can be checked with sha256sum -c
(or b3sum -c for --algorithm blake3).

With --check, the argument is a sidecar instead: every file it names
is looked up next to the sidecar and hashed, and any mismatch fails.`,
		Usage: "bureau-release digest <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Reproduce the sidecar of a published archive",
				Command:     "bureau-release digest dist/widget.tar.gz > widget.tar.gz.sha256",
			},
			{
				Description: "Verify a downloaded asset against its sidecar",
				Command:     "bureau-release digest --check widget.tar.gz.sha256",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("digest", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("digest requires exactly one file argument, got %d", len(args))
			}
			algorithm, err := binhash.ParseAlgorithm(params.Algorithm)
			if err != nil {
				return err
			}
			if params.Check {
				return checkSidecar(env, args[0], sidecarAlgorithm(args[0], algorithm))
			}
			digest, err := algorithm.HashFile(args[0])
			if err != nil {
				return err
			}
			name := params.Name
			if name == "" {
				name = filepath.Base(args[0])
			}
			_, err = fmt.Fprint(env.Stdout, binhash.SidecarLine(digest, name))
			return err
		},
	}
}

// sidecarAlgorithm picks the algorithm from the sidecar's suffix,
// falling back to the requested one.
func sidecarAlgorithm(path string, fallback binhash.Algorithm) binhash.Algorithm {
	for _, algorithm := range binhash.Algorithms {
		if strings.HasSuffix(path, algorithm.Extension()) {
			return algorithm
		}
	}
	return fallback
}

// checkSidecar verifies every line of the sidecar at path. Names are
// resolved relative to the sidecar's directory. Every line is checked
// before a failure is reported.
func checkSidecar(env Environment, path string, algorithm binhash.Algorithm) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading sidecar: %w", err)
	}

	var errs []error
	checked := 0
	for number, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		want, name, err := binhash.ParseSidecarLine(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s:%d: %w", path, number+1, err))
			continue
		}
		checked++
		got, err := algorithm.HashFile(filepath.Join(filepath.Dir(path), filepath.FromSlash(name)))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if got != want {
			fmt.Fprintf(env.Stdout, "%s: FAILED\n", name)
			errs = append(errs, fmt.Errorf("%s: %s checksum mismatch", name, algorithm))
			continue
		}
		fmt.Fprintf(env.Stdout, "%s: OK\n", name)
	}
	if checked == 0 && len(errs) == 0 {
		return fmt.Errorf("%s has no checksum lines", path)
	}
	return errors.Join(errs...)
}
