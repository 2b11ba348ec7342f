// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cargo

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

const workspaceMetadataJSON = `{
  "packages": [
    {
      "name": "core",
      "version": "0.1.0",
      "id": "path+file:///ws/core#0.1.0",
      "default_run": null,
      "targets": [
        {"name": "core", "kind": ["lib"], "required-features": [], "src_path": "/ws/core/src/lib.rs"}
      ]
    },
    {
      "name": "tool",
      "version": "0.2.0",
      "id": "path+file:///ws/tool#0.2.0",
      "default_run": "tool-cli",
      "targets": [
        {"name": "tool-cli", "kind": ["bin"], "src_path": "/ws/tool/src/main.rs"},
        {"name": "tool-admin", "kind": ["bin"], "required-features": ["admin", "tls"], "src_path": "/ws/tool/src/bin/admin.rs"}
      ]
    }
  ],
  "workspace_members": ["path+file:///ws/core#0.1.0", "path+file:///ws/tool#0.2.0"],
  "target_directory": "/ws/target",
  "workspace_root": "/ws"
}`

func TestParseMetadata(t *testing.T) {
	t.Parallel()

	metadata, err := ParseMetadata([]byte(workspaceMetadataJSON))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}

	if metadata.TargetDirectory != "/ws/target" {
		t.Errorf("TargetDirectory = %q, want /ws/target", metadata.TargetDirectory)
	}
	if len(metadata.Packages) != 2 {
		t.Fatalf("len(Packages) = %d, want 2", len(metadata.Packages))
	}

	core := metadata.Packages[0]
	if core.DefaultRun != "" {
		t.Errorf("core.DefaultRun = %q, want empty for null", core.DefaultRun)
	}
	if binaries := core.Binaries(); len(binaries) != 0 {
		t.Errorf("core.Binaries() = %v, want none", binaries)
	}

	tool := metadata.Packages[1]
	if tool.DefaultRun != "tool-cli" {
		t.Errorf("tool.DefaultRun = %q, want tool-cli", tool.DefaultRun)
	}
	binaries := tool.Binaries()
	if len(binaries) != 2 || binaries[0].Name != "tool-cli" || binaries[1].Name != "tool-admin" {
		t.Fatalf("tool.Binaries() = %v, want [tool-cli tool-admin] in order", binaries)
	}
	if !slices.Equal(binaries[1].RequiredFeatures, []string{"admin", "tls"}) {
		t.Errorf("RequiredFeatures = %v, want [admin tls]", binaries[1].RequiredFeatures)
	}
}

func TestParseMetadata_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "invalid json", input: "{", want: "decoding cargo metadata"},
		{name: "missing target directory", input: `{"packages": []}`, want: "no target_directory"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseMetadata([]byte(test.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %v, want containing %q", err, test.want)
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	output := `rustc 1.84.0 (9fc6b4312 2025-01-07)
binary: rustc
commit-hash: 9fc6b43126469e3858e2fe86cafb4f0fd5068869
commit-date: 2025-01-07
host: x86_64-unknown-linux-gnu
release: 1.84.0
LLVM version: 19.1.5
`
	info, err := ParseVersion(output)
	if err != nil {
		t.Fatalf("ParseVersion: %v", err)
	}
	if info.Release != "rustc 1.84.0 (9fc6b4312 2025-01-07)" {
		t.Errorf("Release = %q", info.Release)
	}
	if info.Host != "x86_64-unknown-linux-gnu" {
		t.Errorf("Host = %q, want x86_64-unknown-linux-gnu", info.Host)
	}
	if info.Fields["LLVM version"] != "19.1.5" {
		t.Errorf("Fields[LLVM version] = %q, want 19.1.5", info.Fields["LLVM version"])
	}
}

func TestParseVersion_Empty(t *testing.T) {
	t.Parallel()

	if _, err := ParseVersion("  \n"); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		request BuildRequest
		want    []string
	}{
		{
			name:    "no features",
			request: BuildRequest{Binary: "tool", Triple: "x86_64-unknown-linux-gnu", Profile: "release"},
			want:    []string{"build", "--bin", "tool", "--target", "x86_64-unknown-linux-gnu", "--profile", "release"},
		},
		{
			name: "features joined",
			request: BuildRequest{
				Binary:   "tool-admin",
				Triple:   "aarch64-apple-darwin",
				Profile:  "dist",
				Features: []string{"admin", "tls"},
			},
			want: []string{"build", "--bin", "tool-admin", "--target", "aarch64-apple-darwin", "--profile", "dist", "--features", "admin,tls"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := BuildArgs(test.request); !slices.Equal(got, test.want) {
				t.Errorf("BuildArgs() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestFindBinary_NonexistentBinary(t *testing.T) {
	t.Setenv("CARGO_HOME", t.TempDir())

	_, err := FindBinary("cargo-definitely-does-not-exist-abcxyz")
	if err == nil {
		t.Fatal("expected error for nonexistent binary")
	}
	if !strings.Contains(err.Error(), "not found on PATH") {
		t.Errorf("error = %v, want error containing 'not found on PATH'", err)
	}
}

func TestFindBinary_CargoHome(t *testing.T) {
	cargoHome := t.TempDir()
	binaryPath := filepath.Join(cargoHome, "bin", "cargo-fake-probe")
	if err := os.MkdirAll(filepath.Dir(binaryPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(binaryPath, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CARGO_HOME", cargoHome)

	path, err := FindBinary("cargo-fake-probe")
	if err != nil {
		t.Fatalf("FindBinary: %v", err)
	}
	if path != binaryPath {
		t.Errorf("FindBinary() = %q, want %q", path, binaryPath)
	}
}

// writeScript writes an executable shell script standing in for a
// toolchain binary.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script toolchain stubs require a POSIX shell")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestToolchain_Metadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fixture := filepath.Join(dir, "metadata.json")
	if err := os.WriteFile(fixture, []byte(workspaceMetadataJSON), 0644); err != nil {
		t.Fatal(err)
	}
	argsFile := filepath.Join(dir, "args")
	cargo := writeScript(t, dir, "cargo", `printf '%s\n' "$@" > `+argsFile+`
cat `+fixture+`
`)

	toolchain := New(Config{Cargo: cargo, Logger: discardLogger()})
	metadata, err := toolchain.Metadata(context.Background(), dir)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if len(metadata.Packages) != 2 {
		t.Errorf("len(Packages) = %d, want 2", len(metadata.Packages))
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(string(args)); !slices.Equal(got, []string{"metadata", "--format-version", "1", "--no-deps"}) {
		t.Errorf("cargo args = %v", got)
	}
}

func TestToolchain_VersionProbe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rustc := writeScript(t, dir, "rustc", `cat <<'EOF'
rustc 1.84.0 (9fc6b4312 2025-01-07)
host: aarch64-unknown-linux-gnu
EOF
`)

	toolchain := New(Config{Rustc: rustc, Logger: discardLogger()})
	info, err := toolchain.VersionProbe(context.Background())
	if err != nil {
		t.Fatalf("VersionProbe: %v", err)
	}
	if info.Host != "aarch64-unknown-linux-gnu" {
		t.Errorf("Host = %q, want aarch64-unknown-linux-gnu", info.Host)
	}
}

func TestToolchain_Build(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	cargo := writeScript(t, dir, "cargo", `printf '%s\n' "$@" > `+argsFile+`
echo compiling
`)

	var output bytes.Buffer
	toolchain := New(Config{Cargo: cargo, Stdout: &output, Stderr: &output, Logger: discardLogger()})
	err := toolchain.Build(context.Background(), BuildRequest{
		Binary:   "tool",
		Triple:   "x86_64-unknown-linux-gnu",
		Profile:  "release",
		Features: []string{"a", "b"},
		Dir:      dir,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"build", "--bin", "tool", "--target", "x86_64-unknown-linux-gnu", "--profile", "release", "--features", "a,b"}
	if got := strings.Fields(string(args)); !slices.Equal(got, want) {
		t.Errorf("cargo args = %v, want %v", got, want)
	}
	if !strings.Contains(output.String(), "compiling") {
		t.Errorf("build output not streamed: %q", output.String())
	}
}

func TestToolchain_BuildFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cargo := writeScript(t, dir, "cargo", "echo 'error[E0425]: cannot find value' >&2\nexit 101\n")

	var output bytes.Buffer
	toolchain := New(Config{Cargo: cargo, Stdout: &output, Stderr: &output, Logger: discardLogger()})
	err := toolchain.Build(context.Background(), BuildRequest{Binary: "tool", Triple: "t", Profile: "release"})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "exit status 101") {
		t.Errorf("error = %v, want exit status 101", err)
	}
}

func TestToolchain_CaptureIncludesStderr(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cargo := writeScript(t, dir, "cargo", "echo 'could not find Cargo.toml' >&2\nexit 101\n")

	toolchain := New(Config{Cargo: cargo, Logger: discardLogger()})
	_, err := toolchain.Metadata(context.Background(), dir)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "could not find Cargo.toml") {
		t.Errorf("error = %v, want stderr text", err)
	}
}

func TestToolchain_MissingBinaryOverride(t *testing.T) {
	t.Parallel()

	toolchain := New(Config{Cargo: filepath.Join(t.TempDir(), "nope"), Logger: discardLogger()})
	err := toolchain.Build(context.Background(), BuildRequest{Binary: "tool", Triple: "t", Profile: "release"})
	if err == nil {
		t.Fatal("expected error when the cargo binary cannot be started")
	}
}
