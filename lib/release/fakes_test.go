// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bureau-foundation/bureau-release/lib/cargo"
	"github.com/bureau-foundation/bureau-release/lib/github"
)

// binaryPackage returns a package declaring the given binary targets.
func binaryPackage(name, defaultRun string, binaries ...string) cargo.Package {
	pkg := cargo.Package{Name: name, DefaultRun: defaultRun}
	for _, binary := range binaries {
		pkg.Targets = append(pkg.Targets, cargo.Target{Name: binary, Kind: []string{cargo.BinaryKind}})
	}
	return pkg
}

// libraryPackage returns a package with only a library target.
func libraryPackage(name string) cargo.Package {
	return cargo.Package{Name: name, Targets: []cargo.Target{{Name: name, Kind: []string{"lib"}}}}
}

// fakeToolchain serves fixed metadata and version information and
// records build requests. When writeArtifact is set, Build writes
// artifactContent at the path Cargo would produce.
type fakeToolchain struct {
	metadata    *cargo.Metadata
	metadataErr error
	host        string
	probeErr    error
	buildErr    error

	writeArtifact   bool
	artifactContent []byte

	mu            sync.Mutex
	metadataCalls int
	probes        int
	requests      []cargo.BuildRequest
}

func (toolchain *fakeToolchain) Metadata(ctx context.Context, dir string) (*cargo.Metadata, error) {
	toolchain.mu.Lock()
	toolchain.metadataCalls++
	toolchain.mu.Unlock()
	if toolchain.metadataErr != nil {
		return nil, toolchain.metadataErr
	}
	return toolchain.metadata, nil
}

func (toolchain *fakeToolchain) VersionProbe(ctx context.Context) (cargo.VersionInfo, error) {
	toolchain.mu.Lock()
	toolchain.probes++
	toolchain.mu.Unlock()
	if toolchain.probeErr != nil {
		return cargo.VersionInfo{}, toolchain.probeErr
	}
	return cargo.VersionInfo{Release: "1.85.0", Host: toolchain.host}, nil
}

func (toolchain *fakeToolchain) Build(ctx context.Context, request cargo.BuildRequest) error {
	toolchain.mu.Lock()
	toolchain.requests = append(toolchain.requests, request)
	toolchain.mu.Unlock()
	if toolchain.buildErr != nil {
		return toolchain.buildErr
	}
	if toolchain.writeArtifact {
		path := ArtifactPath(toolchain.metadata.TargetDirectory, request.Triple, request.Profile, request.Binary)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		return os.WriteFile(path, toolchain.artifactContent, 0755)
	}
	return nil
}

func (toolchain *fakeToolchain) buildCount() int {
	toolchain.mu.Lock()
	defer toolchain.mu.Unlock()
	return len(toolchain.requests)
}

// uploadCall is one recorded UploadReleaseAsset invocation.
type uploadCall struct {
	owner       string
	repo        string
	releaseID   int64
	name        string
	contentType string
	data        []byte
}

// fakeReleaseClient records uploads. Uploads whose name is in failOn
// return failErr.
type fakeReleaseClient struct {
	failOn  map[string]bool
	failErr error

	existing []github.ReleaseAsset

	uploads []uploadCall
}

func (client *fakeReleaseClient) UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, name, contentType string, data []byte) (*github.ReleaseAsset, error) {
	client.uploads = append(client.uploads, uploadCall{
		owner:       owner,
		repo:        repo,
		releaseID:   releaseID,
		name:        name,
		contentType: contentType,
		data:        append([]byte(nil), data...),
	})
	if client.failOn[name] {
		err := client.failErr
		if err == nil {
			err = errors.New("upload rejected")
		}
		return nil, err
	}
	return &github.ReleaseAsset{Name: name, Size: int64(len(data)), State: "uploaded"}, nil
}

func (client *fakeReleaseClient) ListReleaseAssets(ctx context.Context, owner, repo string, releaseID int64) ([]github.ReleaseAsset, error) {
	return client.existing, nil
}

func (client *fakeReleaseClient) uploadedNames() []string {
	names := make([]string, len(client.uploads))
	for i, upload := range client.uploads {
		names[i] = upload.name
	}
	return names
}

// recordingGrouper records group boundaries.
type recordingGrouper struct {
	events []string
}

func (grouper *recordingGrouper) Group(title string) {
	grouper.events = append(grouper.events, "group:"+title)
}

func (grouper *recordingGrouper) EndGroup() {
	grouper.events = append(grouper.events, "end")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
