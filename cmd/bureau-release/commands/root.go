// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the bureau-release command tree.
package commands

import "github.com/bureau-foundation/bureau-release/cmd/bureau-release/cli"

// Root builds and returns the complete bureau-release command tree.
func Root(env Environment) *cli.Command {
	return &cli.Command{
		Name: "bureau-release",
		Description: `bureau-release: build Rust binaries and publish them to GitHub releases.

Resolves a binary target from the Cargo workspace, builds it for the
requested target triple and profile, optionally packages it into zip
or tar.gz archives, and uploads the results (with optional checksum
sidecars) to a GitHub release.`,
		Output: env.Stderr,
		Subcommands: []*cli.Command{
			runCommand(env),
			resolveCommand(env),
			digestCommand(env),
			versionCommand(env),
		},
		Examples: []cli.Example{
			{
				Description: "Publish the workspace's binary to the release that triggered the workflow",
				Command:     "bureau-release run",
			},
			{
				Description: "Check which binary target a configuration selects",
				Command:     "bureau-release resolve --package widget-cli",
			},
			{
				Description: "Print a checksum line for a file",
				Command:     "bureau-release digest target/release/widget.tar.gz",
			},
		},
	}
}
