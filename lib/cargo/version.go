// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cargo

import (
	"fmt"
	"strings"
)

// VersionInfo is the parsed output of "rustc --version --verbose":
//
//	rustc 1.84.0 (9fc6b4312 2025-01-07)
//	binary: rustc
//	commit-hash: 9fc6b43126469e3858e2fe86cafb4f0fd5068869
//	host: x86_64-unknown-linux-gnu
//	release: 1.84.0
//	LLVM version: 19.1.5
type VersionInfo struct {
	// Release is the first line, verbatim.
	Release string

	// Host is the host target triple (the "host" field).
	Host string

	// Fields holds every "key: value" line. Keys keep their original
	// spelling ("commit-hash", "LLVM version").
	Fields map[string]string
}

// ParseVersion parses verbose rustc version output. Lines without a
// colon after the first are ignored.
func ParseVersion(output string) (VersionInfo, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return VersionInfo{}, fmt.Errorf("empty rustc version output")
	}

	info := VersionInfo{
		Release: strings.TrimSpace(lines[0]),
		Fields:  make(map[string]string, len(lines)-1),
	}
	for _, line := range lines[1:] {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		info.Fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	info.Host = info.Fields["host"]

	return info, nil
}
