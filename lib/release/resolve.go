// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import "github.com/bureau-foundation/bureau-release/lib/cargo"

// BinaryTarget is the binary selected for a run.
type BinaryTarget struct {
	// Name is the binary target name, passed to cargo build --bin.
	Name string

	// Package is the name of the package that declares the binary.
	Package string

	// RequiredFeatures are the features the binary declares it needs.
	// Never nil.
	RequiredFeatures []string

	// Metadata is the workspace the target was resolved from.
	Metadata *cargo.Metadata
}

// Resolve selects exactly one binary target from the workspace.
//
// Only packages that declare at least one binary are considered, in
// metadata order. For each one the wanted binary name is binary when
// set, else the package's default-run, else the package name. When pkg
// is set, packages with a different name are skipped. The first
// binary target whose name equals the wanted name wins.
//
// When neither pkg nor binary is set and the workspace has exactly one
// candidate package, binary defaults to that package's default-run.
func Resolve(metadata *cargo.Metadata, pkg, binary string) (BinaryTarget, error) {
	var candidates []cargo.Package
	for _, candidate := range metadata.Packages {
		if len(candidate.Binaries()) > 0 {
			candidates = append(candidates, candidate)
		}
	}

	wantBinary := binary
	if pkg == "" && wantBinary == "" && len(candidates) == 1 {
		wantBinary = candidates[0].DefaultRun
	}

	for _, candidate := range candidates {
		if pkg != "" && pkg != candidate.Name {
			continue
		}
		name := wantBinary
		if name == "" {
			name = candidate.DefaultRun
		}
		if name == "" {
			name = candidate.Name
		}
		for _, target := range candidate.Binaries() {
			if target.Name != name {
				continue
			}
			features := make([]string, len(target.RequiredFeatures))
			copy(features, target.RequiredFeatures)
			return BinaryTarget{
				Name:             target.Name,
				Package:          candidate.Name,
				RequiredFeatures: features,
				Metadata:         metadata,
			}, nil
		}
	}

	return BinaryTarget{}, &ResolutionError{Package: pkg, Binary: binary}
}
