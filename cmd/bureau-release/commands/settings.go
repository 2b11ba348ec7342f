// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bureau-release/cmd/bureau-release/cli"
	"github.com/bureau-foundation/bureau-release/lib/actions"
	"github.com/bureau-foundation/bureau-release/lib/config"
)

// SelectionParams are the flags shared by every command that loads a
// Cargo workspace.
type SelectionParams struct {
	Config           string `flag:"config" desc:"config file (.yaml, .yml, .json, .jsonc); defaults to $BUREAU_RELEASE_CONFIG"`
	Package          string `flag:"package,p" desc:"Cargo package containing the binary"`
	Binary           string `flag:"binary,b" desc:"binary target to build"`
	WorkingDirectory string `flag:"working-directory,C" desc:"Cargo workspace directory (default: current directory)"`
	Cargo            string `flag:"cargo" desc:"path to cargo (default: PATH, then $CARGO_HOME/bin, then ~/.cargo/bin)"`
	Rustc            string `flag:"rustc" desc:"path to rustc (default: resolved like --cargo)"`
}

// loadSettings layers the configuration: defaults, the config file,
// action inputs, then every flag that was set on the command line and
// names a configuration key. Flags that are not configuration keys
// (--config, --dry-run, ...) are skipped. The result is validated.
func loadSettings(env Environment, runtime *actions.Runtime, configPath string, flagSet *pflag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env.Getenv)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyInputs(runtime.LookupInput); err != nil {
		return nil, err
	}
	cfg.ApplyEnvironment(env.Getenv)

	if flagSet != nil {
		var flagErr error
		flagSet.Visit(func(flag *pflag.Flag) {
			key := strings.ReplaceAll(flag.Name, "-", "_")
			if flagErr != nil || !slices.Contains(config.Keys, key) {
				return
			}
			separator := ","
			if key == "archive_include" {
				separator = "\n"
			}
			if err := cfg.Set(key, strings.Join(cli.FlagValues(flag), separator)); err != nil {
				flagErr = fmt.Errorf("--%s: %w", flag.Name, err)
			}
		})
		if flagErr != nil {
			return nil, flagErr
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
