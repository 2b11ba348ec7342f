// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cargo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Config holds configuration for a Toolchain. Every field is optional.
type Config struct {
	// Cargo and Rustc override binary resolution with explicit paths.
	Cargo string
	Rustc string

	// Stdout and Stderr receive the output of "cargo build". Default
	// to os.Stderr for both so compiler output never mixes with
	// machine-readable stdout.
	Stdout io.Writer
	Stderr io.Writer

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Toolchain runs cargo and rustc.
type Toolchain struct {
	cargo  string
	rustc  string
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// New creates a Toolchain from the given configuration. Binary paths
// are resolved lazily on each call so a missing rustc only fails the
// operation that needs it.
func New(config Config) *Toolchain {
	stdout := config.Stdout
	if stdout == nil {
		stdout = os.Stderr
	}
	stderr := config.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolchain{
		cargo:  config.Cargo,
		rustc:  config.Rustc,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}
}

// FindBinary resolves a toolchain binary by name ("cargo", "rustc"),
// checking PATH, then $CARGO_HOME/bin, then ~/.cargo/bin. Returns the
// absolute path to the binary.
func FindBinary(name string) (string, error) {
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	var candidates []string
	if cargoHome := os.Getenv("CARGO_HOME"); cargoHome != "" {
		candidates = append(candidates, filepath.Join(cargoHome, "bin", name))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".cargo", "bin", name))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s not found on PATH or in %s (install a Rust toolchain with rustup)",
		name, strings.Join(candidates, ", "))
}

// BuildRequest describes a single "cargo build" invocation.
type BuildRequest struct {
	// Binary is the --bin target name.
	Binary string

	// Triple is the --target triple.
	Triple string

	// Profile is the --profile name.
	Profile string

	// Features are joined with commas into --features. The flag is
	// omitted entirely when empty.
	Features []string

	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// BuildArgs returns the cargo argument vector for request.
func BuildArgs(request BuildRequest) []string {
	args := []string{
		"build",
		"--bin", request.Binary,
		"--target", request.Triple,
		"--profile", request.Profile,
	}
	if len(request.Features) > 0 {
		args = append(args, "--features", strings.Join(request.Features, ","))
	}
	return args
}

// Metadata runs "cargo metadata" in dir and decodes the result. Only
// workspace members are listed (--no-deps): dependency packages can
// declare binaries too, and those are never release candidates.
func (toolchain *Toolchain) Metadata(ctx context.Context, dir string) (*Metadata, error) {
	output, err := toolchain.capture(ctx, "cargo", dir, []string{"metadata", "--format-version", "1", "--no-deps"})
	if err != nil {
		return nil, err
	}
	return ParseMetadata(output)
}

// VersionProbe runs "rustc --version --verbose".
func (toolchain *Toolchain) VersionProbe(ctx context.Context) (VersionInfo, error) {
	output, err := toolchain.capture(ctx, "rustc", "", []string{"--version", "--verbose"})
	if err != nil {
		return VersionInfo{}, err
	}
	info, err := ParseVersion(string(output))
	if err != nil {
		return VersionInfo{}, err
	}
	toolchain.logger.Info("rustc version", "release", info.Release, "host", info.Host)
	return info, nil
}

// Build runs "cargo build" for a single binary and blocks until it
// exits. Compiler output is streamed, not captured. A non-zero exit
// or a failure to start the process is returned as an error.
func (toolchain *Toolchain) Build(ctx context.Context, request BuildRequest) error {
	binaryPath, err := toolchain.resolve("cargo")
	if err != nil {
		return err
	}

	args := BuildArgs(request)
	toolchain.logCommand("cargo", request.Dir, args)

	command := exec.CommandContext(ctx, binaryPath, args...)
	command.Dir = request.Dir
	command.Stdout = toolchain.stdout
	command.Stderr = toolchain.stderr

	if err := command.Run(); err != nil {
		return fmt.Errorf("cargo %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// capture runs a toolchain binary and returns stdout. Stderr is
// captured separately and included in error messages.
func (toolchain *Toolchain) capture(ctx context.Context, name, dir string, args []string) ([]byte, error) {
	binaryPath, err := toolchain.resolve(name)
	if err != nil {
		return nil, err
	}

	toolchain.logCommand(name, dir, args)

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, binaryPath, args...)
	command.Dir = dir
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return nil, formatError(name, args, &stderr, err)
	}
	return stdout.Bytes(), nil
}

// resolve returns the configured override for name or falls back to
// FindBinary.
func (toolchain *Toolchain) resolve(name string) (string, error) {
	switch {
	case name == "cargo" && toolchain.cargo != "":
		return toolchain.cargo, nil
	case name == "rustc" && toolchain.rustc != "":
		return toolchain.rustc, nil
	}
	return FindBinary(name)
}

func (toolchain *Toolchain) logCommand(name, dir string, args []string) {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	if absolute, err := filepath.Abs(dir); err == nil {
		dir = absolute
	}
	toolchain.logger.Info("running toolchain command",
		"dir", dir,
		"command", name+" "+strings.Join(args, " "),
	)
}

// formatError produces an error message for a failed command,
// preferring stderr output (which carries the real diagnostic) over
// the generic exec error.
func formatError(name string, args []string, stderr *bytes.Buffer, err error) error {
	commandString := name + " " + strings.Join(args, " ")
	stderrText := strings.TrimSpace(stderr.String())
	if stderrText != "" {
		return fmt.Errorf("%s: %w: %s", commandString, err, stderrText)
	}
	return fmt.Errorf("%s: %w", commandString, err)
}
