// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. These functions
// centralize the raw I/O that happens before the structured logger
// exists or after main() has given up:
//
//   - Fatal error reporting to stderr.
//   - Process exit with the code a command asked for.
package process
