// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
)

// Algorithm identifies a digest algorithm for checksum sidecars.
type Algorithm string

const (
	// SHA256 is the default sidecar algorithm, readable by sha256sum -c.
	SHA256 Algorithm = "sha256"

	// BLAKE3 produces 256-bit BLAKE3 digests, readable by b3sum -c.
	BLAKE3 Algorithm = "blake3"
)

// Algorithms lists every supported algorithm in display order.
var Algorithms = []Algorithm{SHA256, BLAKE3}

// ParseAlgorithm parses an algorithm name. The empty string selects
// SHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", SHA256:
		return SHA256, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", fmt.Errorf("unknown digest algorithm %q (supports %s, %s)", name, SHA256, BLAKE3)
	}
}

// Extension returns the sidecar file suffix for the algorithm,
// including the leading dot.
func (algorithm Algorithm) Extension() string {
	if algorithm == BLAKE3 {
		return ".b3"
	}
	return ".sha256"
}

func (algorithm Algorithm) newHash() hash.Hash {
	if algorithm == BLAKE3 {
		return blake3.New()
	}
	return sha256.New()
}

// Sum computes the digest of data.
func (algorithm Algorithm) Sum(data []byte) [32]byte {
	if algorithm == BLAKE3 {
		return blake3.Sum256(data)
	}
	return sha256.Sum256(data)
}

// HashFile computes the digest of the file at path with the algorithm,
// streaming the contents.
func (algorithm Algorithm) HashFile(path string) ([32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := algorithm.newHash()
	if _, err := io.Copy(hasher, file); err != nil {
		return [32]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// FormatDigest returns the hex-encoded string representation of a
// 32-byte digest. This is the canonical format used in sidecar files
// and log output.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a hex-encoded digest string into a 32-byte array.
// Returns an error if the string is not a valid 64-character hex
// encoding of 32 bytes.
func ParseDigest(hexString string) ([32]byte, error) {
	var digest [32]byte
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != 32 {
		return digest, fmt.Errorf("hash digest is %d bytes, want 32", len(decoded))
	}
	copy(digest[:], decoded)
	return digest, nil
}

// SidecarLine formats a checksum line in the coreutils convention:
// hex digest, two spaces, file name, newline.
func SidecarLine(digest [32]byte, name string) string {
	return FormatDigest(digest) + "  " + name + "\n"
}

// ParseSidecarLine parses one line produced by SidecarLine (or by
// sha256sum / b3sum in text mode). A leading '*' on the name (binary
// mode marker) is stripped.
func ParseSidecarLine(line string) ([32]byte, string, error) {
	line = strings.TrimRight(line, "\r\n")
	hexDigest, name, found := strings.Cut(line, " ")
	if !found {
		return [32]byte{}, "", fmt.Errorf("malformed checksum line %q", line)
	}
	digest, err := ParseDigest(hexDigest)
	if err != nil {
		return [32]byte{}, "", err
	}
	name = strings.TrimPrefix(strings.TrimPrefix(name, " "), "*")
	if name == "" {
		return [32]byte{}, "", fmt.Errorf("checksum line %q has no file name", line)
	}
	return digest, name, nil
}
