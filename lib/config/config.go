// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/bureau-release/lib/binhash"
	"github.com/bureau-foundation/bureau-release/lib/release"
)

// EnvironmentVariable names the variable [Load] reads the config file
// path from.
const EnvironmentVariable = "BUREAU_RELEASE_CONFIG"

// Config is the complete configuration of one release run.
type Config struct {
	// Package selects the Cargo package. Empty lets the resolver pick
	// the only candidate.
	Package string `yaml:"package" json:"package"`

	// Binary selects the binary target within the package.
	Binary string `yaml:"binary" json:"binary"`

	// Target is the target triple. Empty builds for the host.
	Target string `yaml:"target" json:"target"`

	// Profile is the Cargo build profile.
	Profile string `yaml:"profile" json:"profile"`

	// Token authenticates against the GitHub API. Falls back to the
	// GITHUB_TOKEN environment variable.
	Token string `yaml:"token" json:"token"`

	// Asset is an explicit asset base name. Takes precedence over
	// AssetFormat.
	Asset string `yaml:"asset" json:"asset"`

	// AssetFormat is the asset name template with {field} placeholders.
	AssetFormat string `yaml:"asset_format" json:"asset_format"`

	// AssetDigest uploads a checksum sidecar next to every asset.
	AssetDigest bool `yaml:"asset_digest" json:"asset_digest"`

	// DigestAlgorithm is "sha256" or "blake3".
	DigestAlgorithm string `yaml:"digest_algorithm" json:"digest_algorithm"`

	// Archive packages the binary instead of publishing it raw.
	Archive bool `yaml:"archive" json:"archive"`

	// ArchiveTypes are the archive formats to produce. Accepts a list
	// or a comma-separated string.
	ArchiveTypes CommaList `yaml:"archive_types" json:"archive_types"`

	// ArchiveInclude are extra files to add to every archive. Accepts
	// a list or a newline-separated string.
	ArchiveInclude LineList `yaml:"archive_include" json:"archive_include"`

	// WorkingDirectory is the Cargo workspace directory and the base
	// for ArchiveInclude patterns.
	WorkingDirectory string `yaml:"working_directory" json:"working_directory"`

	// VerifyArtifact fails the build stage when the expected binary is
	// missing afterwards. Off by default: the artifact path is derived
	// from the workspace layout and trusted.
	VerifyArtifact bool `yaml:"verify_artifact" json:"verify_artifact"`

	// BuildTimeout bounds cargo build, in time.ParseDuration syntax.
	// Empty waits for completion.
	BuildTimeout string `yaml:"build_timeout" json:"build_timeout"`

	// APIURL is the GitHub REST API base URL.
	APIURL string `yaml:"api_url" json:"api_url"`

	// UploadURL is the GitHub uploads base URL. Empty derives it from
	// APIURL.
	UploadURL string `yaml:"upload_url" json:"upload_url"`
}

// Keys lists every configuration key in the spelling shared by config
// files and action inputs.
var Keys = []string{
	"package",
	"binary",
	"target",
	"profile",
	"token",
	"asset",
	"asset_format",
	"asset_digest",
	"digest_algorithm",
	"archive",
	"archive_types",
	"archive_include",
	"working_directory",
	"verify_artifact",
	"build_timeout",
	"api_url",
	"upload_url",
}

// inputAliases maps alternate input names onto keys.
var inputAliases = map[string]string{
	"pkg": "package",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Profile:         release.DefaultProfile,
		DigestAlgorithm: string(binhash.SHA256),
	}
}

// Load reads the file named by BUREAU_RELEASE_CONFIG (looked up with
// getenv) over the defaults. With the variable unset, the defaults are
// returned.
func Load(getenv func(string) string) (*Config, error) {
	path := getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path over the defaults. Keys the
// file omits keep their default values. The format follows the
// extension: .yaml and .yml are YAML; .json and .jsonc are JSON with
// comments and trailing commas allowed.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config file %s: unsupported extension (want .yaml, .yml, .json, or .jsonc)", path)
	}
	return nil
}

// ApplyInputs overlays action inputs. lookup reports an input's value
// and whether it was set; unset and empty inputs leave the current
// value alone. Every malformed input is reported.
func (c *Config) ApplyInputs(lookup func(name string) (string, bool)) error {
	var errs []error
	for alias, key := range inputAliases {
		if value, ok := lookup(alias); ok && value != "" {
			if err := c.Set(key, value); err != nil {
				errs = append(errs, fmt.Errorf("input %s: %w", alias, err))
			}
		}
	}
	for _, key := range Keys {
		if value, ok := lookup(key); ok && value != "" {
			if err := c.Set(key, value); err != nil {
				errs = append(errs, fmt.Errorf("input %s: %w", key, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ApplyEnvironment fills values that have an environment fallback.
// Currently only the token reads GITHUB_TOKEN.
func (c *Config) ApplyEnvironment(getenv func(string) string) {
	if c.Token == "" {
		c.Token = getenv("GITHUB_TOKEN")
	}
}

// Set assigns one key from its string form. Dashes in key are treated
// as underscores so flag names can be passed directly. Booleans accept
// the spellings strconv.ParseBool does; archive_types splits on commas
// and archive_include on newlines.
func (c *Config) Set(key, value string) error {
	key = strings.ReplaceAll(key, "-", "_")
	if alias, ok := inputAliases[key]; ok {
		key = alias
	}

	switch key {
	case "package":
		c.Package = value
	case "binary":
		c.Binary = value
	case "target":
		c.Target = value
	case "profile":
		c.Profile = value
	case "token":
		c.Token = value
	case "asset":
		c.Asset = value
	case "asset_format":
		c.AssetFormat = value
	case "asset_digest":
		return setBool(&c.AssetDigest, key, value)
	case "digest_algorithm":
		c.DigestAlgorithm = value
	case "archive":
		return setBool(&c.Archive, key, value)
	case "archive_types":
		c.ArchiveTypes = splitList(value, ",")
	case "archive_include":
		c.ArchiveInclude = splitList(value, "\n")
	case "working_directory":
		c.WorkingDirectory = value
	case "verify_artifact":
		return setBool(&c.VerifyArtifact, key, value)
	case "build_timeout":
		c.BuildTimeout = value
	case "api_url":
		c.APIURL = value
	case "upload_url":
		c.UploadURL = value
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}

func setBool(target *bool, key, value string) error {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s: %q is not a boolean", key, value)
	}
	*target = parsed
	return nil
}

// Timeout returns the parsed BuildTimeout, zero when unset.
func (c *Config) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.BuildTimeout) == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(strings.TrimSpace(c.BuildTimeout))
	if err != nil {
		return 0, fmt.Errorf("build_timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("build_timeout: %s is negative", c.BuildTimeout)
	}
	return timeout, nil
}

// Validate checks every field that can be checked without touching the
// workspace or the network, and reports all problems together.
func (c *Config) Validate() error {
	var errs []error

	if _, err := release.ValidateArchiveTypes(c.ArchiveTypes); err != nil {
		errs = append(errs, err)
	}

	if c.Asset == "" && c.AssetFormat != "" {
		if err := release.ValidateTemplate(c.AssetFormat); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := binhash.ParseAlgorithm(c.DigestAlgorithm); err != nil {
		errs = append(errs, fmt.Errorf("digest_algorithm: %w", err))
	}

	if _, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	}

	for _, pattern := range c.ArchiveInclude {
		if filepath.IsAbs(pattern) {
			errs = append(errs, fmt.Errorf("archive_include: %q must be relative to the working directory", pattern))
		}
	}

	return errors.Join(errs...)
}

// Request converts the configuration into a pipeline request for the
// given repository and release. The configuration must have passed
// Validate.
func (c *Config) Request(repository release.Repository, target release.Release) (release.Request, error) {
	timeout, err := c.Timeout()
	if err != nil {
		return release.Request{}, err
	}
	algorithm, err := binhash.ParseAlgorithm(c.DigestAlgorithm)
	if err != nil {
		return release.Request{}, fmt.Errorf("digest_algorithm: %w", err)
	}

	dir := c.WorkingDirectory
	if dir == "" {
		dir = "."
	}

	return release.Request{
		Dir:     dir,
		Package: c.Package,
		Binary:  c.Binary,
		Build: release.BuildSpec{
			Profile:        c.Profile,
			Triple:         c.Target,
			Dir:            dir,
			VerifyArtifact: c.VerifyArtifact,
			Timeout:        timeout,
		},
		Archive:      c.Archive,
		ArchiveTypes: append([]string(nil), c.ArchiveTypes...),
		Includes:     append([]string(nil), c.ArchiveInclude...),
		Naming: release.NamingOptions{
			Explicit: c.Asset,
			Template: c.AssetFormat,
		},
		Digest: release.DigestOptions{
			Enabled:   c.AssetDigest,
			Algorithm: algorithm,
		},
		Repository: repository,
		Release:    target,
	}, nil
}
