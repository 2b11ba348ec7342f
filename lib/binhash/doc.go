// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides content hashing for release assets and the
// checksum sidecar format published next to them.
//
// A sidecar is a one-line text file in the coreutils convention
// ("<hex>  <name>\n") so downstream users can verify a download with
// sha256sum -c or b3sum -c. Digests are always computed over content,
// either an in-memory byte slice ([Algorithm.Sum]) or a streamed file
// ([Algorithm.HashFile]); never over a path string.
//
// SHA256 is the default algorithm. BLAKE3 (via zeebo/blake3) is
// available for projects that publish .b3 sidecars.
//
// This package has no dependencies on other Bureau packages.
package binhash
