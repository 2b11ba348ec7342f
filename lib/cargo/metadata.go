// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cargo

import (
	"encoding/json"
	"fmt"
	"slices"
)

// BinaryKind is the target kind cargo reports for executable targets.
const BinaryKind = "bin"

// Metadata is the subset of "cargo metadata --format-version 1" output
// needed to locate and build a binary. Package and target order is the
// order cargo emits; callers must not re-sort.
type Metadata struct {
	Packages []Package `json:"packages"`

	// TargetDirectory is the shared build output root for the whole
	// workspace (honours CARGO_TARGET_DIR and build.target-dir).
	TargetDirectory string `json:"target_directory"`

	WorkspaceRoot string `json:"workspace_root"`
}

// Package is a single package in the workspace.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	// DefaultRun is the package.default-run manifest key. Cargo emits
	// null when unset, which decodes to "".
	DefaultRun string `json:"default_run"`

	Targets      []Target `json:"targets"`
	ManifestPath string   `json:"manifest_path"`
}

// Target is a build target declared by a package (lib, bin, example,
// test, bench, build script).
type Target struct {
	Name             string   `json:"name"`
	Kind             []string `json:"kind"`
	RequiredFeatures []string `json:"required-features"`
	SrcPath          string   `json:"src_path"`
}

// IsBinary reports whether the target produces an executable.
func (target Target) IsBinary() bool {
	return slices.Contains(target.Kind, BinaryKind)
}

// Binaries returns the package's binary targets in declaration order.
func (pkg Package) Binaries() []Target {
	var binaries []Target
	for _, target := range pkg.Targets {
		if target.IsBinary() {
			binaries = append(binaries, target)
		}
	}
	return binaries
}

// ParseMetadata decodes the JSON output of "cargo metadata".
func ParseMetadata(data []byte) (*Metadata, error) {
	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("decoding cargo metadata: %w", err)
	}
	if metadata.TargetDirectory == "" {
		return nil, fmt.Errorf("cargo metadata has no target_directory")
	}
	return &metadata, nil
}
