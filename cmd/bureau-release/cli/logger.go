// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LoggerOptions selects the format and level of a command logger.
type LoggerOptions struct {
	// Output receives log records. Defaults to os.Stderr.
	Output io.Writer

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// IsTerminal reports whether Output is an interactive terminal.
	// Defaults to checking os.Stderr with x/term.
	IsTerminal func() bool
}

// NewCommandLogger creates a structured logger for CLI command operations.
//
// When stderr is a terminal, or when running as a GitHub Actions step
// (whose log viewer is read by people), uses slog.TextHandler for
// human-readable output. Otherwise (piped into another program) uses
// slog.JSONHandler for machine-parseable output.
//
// The level is Info, lowered to Debug when RUNNER_DEBUG=1 (set by
// GitHub when a workflow is re-run with debug logging) or
// BUREAU_RELEASE_DEBUG is non-empty.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(cli.LoggerOptions{}).With(
//	    "command", "run",
//	    "repository", repository.String(),
//	)
func NewCommandLogger(options LoggerOptions) *slog.Logger {
	output := options.Output
	if output == nil {
		output = os.Stderr
	}
	getenv := options.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	isTerminal := options.IsTerminal
	if isTerminal == nil {
		isTerminal = func() bool { return term.IsTerminal(int(os.Stderr.Fd())) }
	}

	level := slog.LevelInfo
	if getenv("RUNNER_DEBUG") == "1" || getenv("BUREAU_RELEASE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	handlerOptions := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isTerminal() || getenv("GITHUB_ACTIONS") == "true" {
		handler = slog.NewTextHandler(output, handlerOptions)
	} else {
		handler = slog.NewJSONHandler(output, handlerOptions)
	}
	return slog.New(handler)
}
