// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package release builds one binary out of a Cargo workspace and
// publishes it to a GitHub release.
//
// The work is a strict chain of stages, each consuming the previous
// stage's result:
//
//	Resolve  workspace metadata -> BinaryTarget
//	Build    BinaryTarget       -> BuildArtifact
//	Archive  BuildArtifact      -> []Asset (zip, tar.gz, or the raw binary)
//	Name     Asset              -> published file name
//	Upload   Asset              -> release asset (+ optional checksum sidecar)
//
// [Pipeline] composes the stages. Every stage fails fast with a typed
// error ([ConfigurationError], [ResolutionError], [BuildError],
// [ArchiveError], [UploadError]); nothing is retried and nothing
// already published is rolled back. Configuration problems (unknown
// archive types, unresolved naming placeholders, unknown digest
// algorithms) are reported before the toolchain is invoked.
//
// The toolchain and the release API are reached through the narrow
// [Toolchain] and [ReleaseClient] interfaces, implemented in
// production by lib/cargo and lib/github.
package release
