// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cargo provides typed access to the Rust toolchain binaries
// (cargo, rustc). It centralizes binary resolution (PATH first, then
// $CARGO_HOME/bin, then ~/.cargo/bin, which is where rustup installs
// proxies on runners that never put them on PATH) and gives every
// invocation uniform logging and error formatting.
//
// Three operations are exposed on [Toolchain]:
//
//   - [Toolchain.Metadata] runs "cargo metadata --format-version 1
//     --no-deps" and decodes the workspace graph into [Metadata]
//   - [Toolchain.VersionProbe] runs "rustc --version --verbose" and
//     parses the key: value lines into [VersionInfo] (the host triple
//     lives under "host")
//   - [Toolchain.Build] runs "cargo build" for one binary target,
//     streaming the compiler output to the configured writers
//
// The package knows nothing about releases. Target selection and
// artifact layout belong to lib/release, which consumes this package
// through a narrow interface so it can be tested without a toolchain.
package cargo
