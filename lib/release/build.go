// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bureau-foundation/bureau-release/lib/cargo"
)

// DefaultProfile is the build profile used when none is requested.
const DefaultProfile = "release"

// Toolchain is the subset of the Rust toolchain the pipeline drives.
// *cargo.Toolchain implements it.
type Toolchain interface {
	// Metadata loads the workspace rooted at (or containing) dir.
	Metadata(ctx context.Context, dir string) (*cargo.Metadata, error)

	// VersionProbe reports the compiler version and host triple.
	VersionProbe(ctx context.Context) (cargo.VersionInfo, error)

	// Build compiles one binary and blocks until the build exits.
	Build(ctx context.Context, request cargo.BuildRequest) error
}

// BuildSpec selects how the target is compiled.
type BuildSpec struct {
	// Profile is the Cargo profile name. Empty means DefaultProfile.
	Profile string

	// Triple is the target triple. Empty means the host triple
	// reported by the toolchain's version probe.
	Triple string

	// Dir is the working directory for the build.
	Dir string

	// VerifyArtifact makes Build stat the computed artifact path after
	// the build and fail if nothing is there.
	VerifyArtifact bool

	// Timeout bounds the build when non-zero.
	Timeout time.Duration
}

// BuildArtifact is the compiled binary on disk.
type BuildArtifact struct {
	// Path is <target directory>/<triple>/<profile dir>/<binary><extension>.
	Path string

	// Windows is true for Windows target triples.
	Windows bool

	// Extension is ".exe" for Windows targets and "" otherwise.
	Extension string

	Triple  string
	Profile string
}

// ProfileDir returns the directory under the target triple that Cargo
// writes a profile's output to. The built-in dev and test profiles
// share "debug"; bench shares "release". Custom profiles use their own
// name.
func ProfileDir(profile string) string {
	switch profile {
	case "dev", "test":
		return "debug"
	case "bench":
		return "release"
	default:
		return profile
	}
}

// ArtifactPath computes where Cargo places the binary for the given
// triple and profile.
func ArtifactPath(targetDirectory, triple, profile, binary string) string {
	return filepath.Join(targetDirectory, triple, ProfileDir(profile), binary+executableExtension(triple))
}

func isWindowsTriple(triple string) bool {
	return strings.Contains(triple, "windows")
}

func executableExtension(triple string) string {
	if isWindowsTriple(triple) {
		return ".exe"
	}
	return ""
}

// Build compiles target according to spec and returns the artifact.
// The artifact path is derived from the workspace layout; it is only
// checked on disk when spec.VerifyArtifact is set.
func Build(ctx context.Context, toolchain Toolchain, target BinaryTarget, spec BuildSpec) (BuildArtifact, error) {
	profile := spec.Profile
	if profile == "" {
		profile = DefaultProfile
	}

	triple := spec.Triple
	if triple == "" {
		info, err := toolchain.VersionProbe(ctx)
		if err != nil {
			return BuildArtifact{}, &BuildError{Binary: target.Name, Profile: profile, Err: fmt.Errorf("detecting host triple: %w", err)}
		}
		if info.Host == "" {
			return BuildArtifact{}, &BuildError{Binary: target.Name, Profile: profile, Err: errors.New("rustc did not report a host triple")}
		}
		triple = info.Host
	}

	if target.Metadata == nil || target.Metadata.TargetDirectory == "" {
		return BuildArtifact{}, &BuildError{Binary: target.Name, Triple: triple, Profile: profile, Err: errors.New("workspace metadata has no target directory")}
	}

	artifact := BuildArtifact{
		Path:      ArtifactPath(target.Metadata.TargetDirectory, triple, profile, target.Name),
		Windows:   isWindowsTriple(triple),
		Extension: executableExtension(triple),
		Triple:    triple,
		Profile:   profile,
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	err := toolchain.Build(ctx, cargo.BuildRequest{
		Binary:   target.Name,
		Triple:   triple,
		Profile:  profile,
		Features: target.RequiredFeatures,
		Dir:      spec.Dir,
	})
	if err != nil {
		if spec.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("build exceeded %s timeout: %w", spec.Timeout, err)
		}
		return BuildArtifact{}, &BuildError{Binary: target.Name, Triple: triple, Profile: profile, Err: err}
	}

	if spec.VerifyArtifact {
		info, err := os.Stat(artifact.Path)
		if err != nil {
			return BuildArtifact{}, &BuildError{Binary: target.Name, Triple: triple, Profile: profile, Err: fmt.Errorf("expected artifact missing: %w", err)}
		}
		if info.IsDir() {
			return BuildArtifact{}, &BuildError{Binary: target.Name, Triple: triple, Profile: profile, Err: fmt.Errorf("expected artifact %s is a directory", artifact.Path)}
		}
	}

	return artifact, nil
}
