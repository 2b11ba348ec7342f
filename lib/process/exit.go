// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exit is replaced in tests.
var exit = os.Exit

// ExitCoder is implemented by errors that carry their own exit code.
// The command has already reported the failure, so nothing is printed.
type ExitCoder interface {
	ExitCode() int
}

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	exit(report(os.Stderr, err))
}

// Exit terminates the process for the error returned by run(): code 0
// for nil, the carried code for an [ExitCoder], and 1 with an
// "error:" line for anything else.
func Exit(err error) {
	if err == nil {
		exit(0)
		return
	}
	exit(report(os.Stderr, err))
}

// report prints err unless it carries its own exit code, and returns
// the code to exit with.
func report(w io.Writer, err error) int {
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}
