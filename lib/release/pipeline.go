// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/bureau-release/lib/binhash"
	"github.com/bureau-foundation/bureau-release/lib/clock"
	"github.com/bureau-foundation/bureau-release/lib/github"
)

// Log group titles, one per stage that does visible work.
const (
	GroupBuild   = "Build binary"
	GroupArchive = "Archive release assets"
	GroupUpload  = "Upload release assets"
)

// Grouper folds a stage's log output under a title. In GitHub Actions
// this is a collapsible ::group:: block.
type Grouper interface {
	Group(title string)
	EndGroup()
}

// AssetLister reports the assets already attached to a release. When
// the Pipeline's client implements it, dry runs report name
// collisions.
type AssetLister interface {
	ListReleaseAssets(ctx context.Context, owner, repo string, releaseID int64) ([]github.ReleaseAsset, error)
}

// Pipeline runs the resolve, build, archive, name, and upload stages
// in order.
type Pipeline struct {
	Toolchain Toolchain
	Client    ReleaseClient

	// Groups receives stage boundaries. Optional.
	Groups Grouper

	// Clock times each stage. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Request describes one release run.
type Request struct {
	// Dir is the working directory: the workspace for cargo and the
	// base for include patterns.
	Dir string

	// Package and Binary select the target. Both are optional.
	Package string
	Binary  string

	Build BuildSpec

	// Archive packages the binary. When false the raw binary is
	// published.
	Archive bool

	// ArchiveTypes are the requested formats. Empty selects the
	// default for the target platform.
	ArchiveTypes []string

	// Includes are extra file globs added to every archive.
	Includes []string

	Naming NamingOptions
	Digest DigestOptions

	Repository Repository
	Release    Release

	// DryRun stops after naming. Nothing is uploaded.
	DryRun bool
}

// PublishedAsset is one asset of a run with its published names.
type PublishedAsset struct {
	Asset

	// Sidecar is the checksum sidecar name, empty when disabled.
	Sidecar string

	// Uploaded is false for dry runs.
	Uploaded bool
}

// Result summarizes a run.
type Result struct {
	Target   BinaryTarget
	Artifact BuildArtifact
	Assets   []PublishedAsset

	// Conflicts lists names that already exist on the release. Only
	// populated by dry runs whose client can list assets.
	Conflicts []string
}

// Run executes the request. Configuration is validated before the
// toolchain is touched. Stages run strictly in sequence; the first
// failure ends the run and is returned unchanged, with any assets
// already uploaded listed in the partial Result.
func (pipeline *Pipeline) Run(ctx context.Context, request Request) (Result, error) {
	logger := pipeline.logger()
	clk := pipeline.clock()

	archiveTypes, err := pipeline.validate(request)
	if err != nil {
		return Result{}, err
	}

	var result Result

	metadata, err := pipeline.Toolchain.Metadata(ctx, request.Dir)
	if err != nil {
		return result, fmt.Errorf("loading workspace metadata: %w", err)
	}
	target, err := Resolve(metadata, request.Package, request.Binary)
	if err != nil {
		return result, err
	}
	result.Target = target
	logger.Info("resolved binary target",
		"binary", target.Name,
		"package", target.Package,
		"features", target.RequiredFeatures,
	)

	spec := request.Build
	if spec.Dir == "" {
		spec.Dir = request.Dir
	}
	started := clk.Now()
	pipeline.group(GroupBuild)
	artifact, err := Build(ctx, pipeline.Toolchain, target, spec)
	pipeline.endGroup()
	if err != nil {
		return result, err
	}
	result.Artifact = artifact
	logger.Info("built binary",
		"path", artifact.Path,
		"target", artifact.Triple,
		"profile", artifact.Profile,
		"duration", clock.Since(clk, started),
	)

	var assets []Asset
	if request.Archive {
		if len(archiveTypes) == 0 {
			archiveTypes = DefaultArchiveTypes(artifact.Windows)
		}
		started = clk.Now()
		pipeline.group(GroupArchive)
		assets, err = ArchiveAll(archiveTypes, artifact.Path, request.Includes, request.Dir)
		pipeline.endGroup()
		if err != nil {
			return result, err
		}
		logger.Info("archived binary",
			"types", archiveTypes,
			"duration", clock.Since(clk, started),
		)
	} else {
		assets = []Asset{RawAsset(artifact)}
	}

	nameContext := NameContext{
		Repository: request.Repository,
		Release:    request.Release,
		Target:     target,
		Triple:     artifact.Triple,
		Profile:    artifact.Profile,
	}
	for i := range assets {
		name, err := Name(assets[i], request.Naming, nameContext)
		if err != nil {
			return result, err
		}
		assets[i].Name = name
	}

	if request.DryRun {
		for _, asset := range assets {
			result.Assets = append(result.Assets, PublishedAsset{Asset: asset, Sidecar: request.Digest.SidecarName(asset.Name)})
		}
		result.Conflicts = pipeline.conflicts(ctx, request, result.Assets)
		logger.Info("dry run: skipping upload", "assets", len(assets), "conflicts", result.Conflicts)
		return result, nil
	}

	pipeline.group(GroupUpload)
	defer pipeline.endGroup()
	for _, asset := range assets {
		logger.Info("uploading release asset",
			"path", asset.Path,
			"name", asset.Name,
			"release", request.Release.ID,
			"repository", request.Repository.String(),
		)
		if err := Upload(ctx, pipeline.Client, request.Repository, request.Release.ID, asset.Path, asset.Name, request.Digest); err != nil {
			return result, err
		}
		result.Assets = append(result.Assets, PublishedAsset{
			Asset:    asset,
			Sidecar:  request.Digest.SidecarName(asset.Name),
			Uploaded: true,
		})
	}
	return result, nil
}

// validate checks every setting that can be judged without the
// toolchain and returns the parsed archive types. Requested types are
// checked even when archiving is off.
func (pipeline *Pipeline) validate(request Request) ([]ArchiveType, error) {
	archiveTypes, err := ValidateArchiveTypes(request.ArchiveTypes)
	if err != nil {
		return nil, err
	}
	if request.Naming.Explicit == "" {
		if err := ValidateTemplate(request.Naming.Template); err != nil {
			return nil, err
		}
	}
	if request.Digest.Enabled {
		if _, err := binhash.ParseAlgorithm(string(request.Digest.Algorithm)); err != nil {
			return nil, &ConfigurationError{
				Field:     "digest algorithm",
				Value:     string(request.Digest.Algorithm),
				Reason:    "unsupported digest algorithm",
				Supported: []string{string(binhash.SHA256), string(binhash.BLAKE3)},
			}
		}
	}
	return archiveTypes, nil
}

// conflicts returns the asset and sidecar names that already exist on
// the release. Lookup failures are logged and treated as no
// conflicts.
func (pipeline *Pipeline) conflicts(ctx context.Context, request Request, assets []PublishedAsset) []string {
	lister, ok := pipeline.Client.(AssetLister)
	if !ok || request.Release.ID == 0 {
		return nil
	}
	existing, err := lister.ListReleaseAssets(ctx, request.Repository.Owner, request.Repository.Name, request.Release.ID)
	if err != nil {
		pipeline.logger().Warn("listing existing release assets failed", "error", err)
		return nil
	}
	published := make(map[string]bool, len(existing))
	for _, asset := range existing {
		published[asset.Name] = true
	}
	var conflicts []string
	for _, asset := range assets {
		for _, name := range []string{asset.Name, asset.Sidecar} {
			if name != "" && published[name] {
				conflicts = append(conflicts, name)
			}
		}
	}
	return conflicts
}

func (pipeline *Pipeline) group(title string) {
	if pipeline.Groups != nil {
		pipeline.Groups.Group(title)
	}
}

func (pipeline *Pipeline) endGroup() {
	if pipeline.Groups != nil {
		pipeline.Groups.EndGroup()
	}
}

func (pipeline *Pipeline) logger() *slog.Logger {
	if pipeline.Logger != nil {
		return pipeline.Logger
	}
	return slog.Default()
}

func (pipeline *Pipeline) clock() clock.Clock {
	if pipeline.Clock != nil {
		return pipeline.Clock
	}
	return clock.Real()
}
