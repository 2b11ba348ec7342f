// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"context"
	"fmt"
	"os"

	"github.com/bureau-foundation/bureau-release/lib/binhash"
	"github.com/bureau-foundation/bureau-release/lib/github"
)

const (
	assetContentType   = "application/octet-stream"
	sidecarContentType = "text/plain"
)

// ReleaseClient publishes files to a release. *github.Client
// implements it.
type ReleaseClient interface {
	UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, name, contentType string, data []byte) (*github.ReleaseAsset, error)
}

// DigestOptions controls the checksum sidecar uploaded after each
// asset.
type DigestOptions struct {
	// Enabled uploads a sidecar next to every asset.
	Enabled bool

	// Algorithm selects the digest. Empty means SHA-256.
	Algorithm binhash.Algorithm
}

// SidecarName returns the published name of the checksum sidecar for
// assetName, or "" when digests are disabled.
func (options DigestOptions) SidecarName(assetName string) string {
	if !options.Enabled {
		return ""
	}
	return assetName + options.algorithm().Extension()
}

func (options DigestOptions) algorithm() binhash.Algorithm {
	if options.Algorithm == "" {
		return binhash.SHA256
	}
	return options.Algorithm
}

// Upload publishes the file at assetPath to the release under
// assetName. With digests enabled, a sidecar holding the digest of
// the same bytes is uploaded only after the asset itself succeeded.
func Upload(ctx context.Context, client ReleaseClient, repository Repository, releaseID int64, assetPath, assetName string, digest DigestOptions) error {
	data, err := os.ReadFile(assetPath)
	if err != nil {
		return &UploadError{Asset: assetPath, Name: assetName, Err: err}
	}

	if _, err := client.UploadReleaseAsset(ctx, repository.Owner, repository.Name, releaseID, assetName, assetContentType, data); err != nil {
		return &UploadError{Asset: assetPath, Name: assetName, Err: err}
	}

	if !digest.Enabled {
		return nil
	}

	sidecarName := digest.SidecarName(assetName)
	line := binhash.SidecarLine(digest.algorithm().Sum(data), assetName)
	if _, err := client.UploadReleaseAsset(ctx, repository.Owner, repository.Name, releaseID, sidecarName, sidecarContentType, []byte(line)); err != nil {
		return &UploadError{Asset: assetPath, Name: sidecarName, Err: fmt.Errorf("checksum sidecar: %w", err)}
	}
	return nil
}
