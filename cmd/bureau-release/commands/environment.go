// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/bureau-foundation/bureau-release/cmd/bureau-release/cli"
	"github.com/bureau-foundation/bureau-release/lib/actions"
	"github.com/bureau-foundation/bureau-release/lib/cargo"
	"github.com/bureau-foundation/bureau-release/lib/clock"
	"github.com/bureau-foundation/bureau-release/lib/release"
)

// Environment is everything the commands take from the process. Tests
// substitute their own; [ProcessEnvironment] is the real one.
type Environment struct {
	// Stdout receives command results and, inside GitHub Actions,
	// workflow commands.
	Stdout io.Writer

	// Stderr receives logs and help text.
	Stderr io.Writer

	// Getenv looks up environment variables.
	Getenv func(string) string

	// HTTPClient carries GitHub API requests. Nil means
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock times pipeline stages and rate-limit waits. Nil means
	// clock.Real().
	Clock clock.Clock

	// Toolchain overrides the cargo toolchain. Nil builds one from
	// the --cargo and --rustc flags.
	Toolchain release.Toolchain

	// Logger overrides the command logger. Nil builds one with
	// cli.NewCommandLogger writing to Stderr.
	Logger *slog.Logger
}

// ProcessEnvironment returns the Environment of the running process.
func ProcessEnvironment() Environment {
	return Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
}

func (env Environment) logger() *slog.Logger {
	if env.Logger != nil {
		return env.Logger
	}
	return cli.NewCommandLogger(cli.LoggerOptions{Output: env.Stderr, Getenv: env.Getenv})
}

func (env Environment) runtime(logger *slog.Logger) *actions.Runtime {
	return actions.New(actions.Config{
		Writer: env.Stdout,
		Getenv: env.Getenv,
		Logger: logger,
	})
}

func (env Environment) toolchain(cargoPath, rustcPath string, logger *slog.Logger) release.Toolchain {
	if env.Toolchain != nil {
		return env.Toolchain
	}
	return cargo.New(cargo.Config{
		Cargo:  cargoPath,
		Rustc:  rustcPath,
		Stdout: env.Stderr,
		Stderr: env.Stderr,
		Logger: logger,
	})
}

func (env Environment) clock() clock.Clock {
	if env.Clock != nil {
		return env.Clock
	}
	return clock.Real()
}
