// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-release builds a Rust binary with cargo and publishes it,
// optionally archived and with checksum sidecars, to a GitHub release.
// It runs as a GitHub Actions step or from a shell.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/bureau-release/cmd/bureau-release/commands"
	"github.com/bureau-foundation/bureau-release/lib/process"
)

func main() {
	process.Exit(run())
}

func run() error {
	// The runner sends SIGTERM when a job is cancelled; cancelling the
	// context stops cargo and any in-flight upload.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.Root(commands.ProcessEnvironment()).Execute(ctx, os.Args[1:])
}
