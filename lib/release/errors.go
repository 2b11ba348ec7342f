// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid setting detected before any
// build work: an unknown archive type, an unresolved naming
// placeholder, an unknown digest algorithm, or an empty asset name.
type ConfigurationError struct {
	// Field names the offending setting ("archive type", "asset name
	// template", ...).
	Field string

	// Value is the rejected value.
	Value string

	// Reason is a short description of the problem.
	Reason string

	// Supported lists the accepted values, when the set is closed.
	Supported []string

	// Unresolved lists every placeholder a template could not bind.
	Unresolved []string
}

func (err *ConfigurationError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "invalid %s %q: %s", err.Field, err.Value, err.Reason)
	if len(err.Unresolved) > 0 {
		fmt.Fprintf(&builder, " (unresolved: %s)", strings.Join(err.Unresolved, ", "))
	}
	if len(err.Supported) > 0 {
		fmt.Fprintf(&builder, " (supported: %s)", strings.Join(err.Supported, ", "))
	}
	return builder.String()
}

// ResolutionError reports that no binary target in the workspace
// matched the requested package and binary. The fields carry the
// caller-supplied values, not the defaults derived during resolution.
type ResolutionError struct {
	Package string
	Binary  string
}

func (err *ResolutionError) Error() string {
	return fmt.Sprintf("no binary target matches package %s and binary %s",
		describeSelector(err.Package), describeSelector(err.Binary))
}

func describeSelector(value string) string {
	if value == "" {
		return "(unset)"
	}
	return fmt.Sprintf("%q", value)
}

// BuildError reports that the toolchain could not produce the binary:
// the host triple could not be determined, the build process failed to
// start or exited non-zero, or the expected artifact is missing.
type BuildError struct {
	Binary  string
	Triple  string
	Profile string
	Err     error
}

func (err *BuildError) Error() string {
	triple := err.Triple
	if triple == "" {
		triple = "host target"
	}
	return fmt.Sprintf("building %s for %s (profile %s): %v", err.Binary, triple, err.Profile, err.Err)
}

func (err *BuildError) Unwrap() error { return err.Err }

// ArchiveError reports an I/O failure while packaging an artifact.
type ArchiveError struct {
	Type ArchiveType
	Path string
	Err  error
}

func (err *ArchiveError) Error() string {
	return fmt.Sprintf("creating %s archive %s: %v", err.Type, err.Path, err.Err)
}

func (err *ArchiveError) Unwrap() error { return err.Err }

// UploadError reports a failed asset or sidecar upload. Asset is the
// local path, Name the published name that was being uploaded.
type UploadError struct {
	Asset string
	Name  string
	Err   error
}

func (err *UploadError) Error() string {
	return fmt.Sprintf("uploading %s as %q: %v", err.Asset, err.Name, err.Err)
}

func (err *UploadError) Unwrap() error { return err.Err }
