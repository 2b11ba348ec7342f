// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bureau-release/cmd/bureau-release/cli"
	"github.com/bureau-foundation/bureau-release/lib/actions"
	"github.com/bureau-foundation/bureau-release/lib/github"
	"github.com/bureau-foundation/bureau-release/lib/release"
	"github.com/bureau-foundation/bureau-release/lib/version"
)

type runParams struct {
	SelectionParams

	Target          string   `flag:"target" desc:"target triple (default: the host triple reported by rustc)"`
	Profile         string   `flag:"profile" desc:"Cargo build profile" default:"release"`
	Asset           string   `flag:"asset" desc:"explicit asset base name; the archive or executable extension is appended"`
	AssetFormat     string   `flag:"asset-format" desc:"asset name template, e.g. {binary.name}-{release.tag_name}-{target}{extension}"`
	AssetDigest     bool     `flag:"asset-digest" desc:"upload a checksum sidecar next to every asset"`
	DigestAlgorithm string   `flag:"digest-algorithm" desc:"sidecar digest algorithm: sha256 or blake3" default:"sha256"`
	Archive         bool     `flag:"archive" desc:"package the binary into archives instead of uploading it raw"`
	ArchiveTypes    string   `flag:"archive-types" desc:"comma-separated archive types: zip, tar.gz (default: zip on Windows targets, tar.gz elsewhere)"`
	ArchiveInclude  []string `flag:"archive-include" desc:"extra file or glob to add to every archive (repeatable)" repeat:"true"`
	VerifyArtifact  bool     `flag:"verify-artifact" desc:"fail when the built binary is not where Cargo should have put it"`
	BuildTimeout    string   `flag:"build-timeout" desc:"abort cargo build after this long (e.g. 30m)"`
	APIURL          string   `flag:"api-url" desc:"GitHub API root (default: $GITHUB_API_URL, then https://api.github.com)"`
	UploadURL       string   `flag:"upload-url" desc:"GitHub uploads root (default: derived from the API root)"`

	Repository string `flag:"repository" desc:"owner/name of the repository (default: $GITHUB_REPOSITORY)"`
	ReleaseTag string `flag:"release-tag" desc:"publish to the release with this tag instead of the triggering release event"`
	ReleaseID  int    `flag:"release-id" desc:"publish to the release with this ID instead of the triggering release event"`
	DryRun     bool   `flag:"dry-run,n" desc:"build, package, and name the assets without uploading"`
}

// releaseTarget is where a run publishes.
type releaseTarget struct {
	repository release.Repository
	release    release.Release
	apiURL     string
}

func runCommand(env Environment) *cli.Command {
	var params runParams
	var flagSet *pflag.FlagSet

	return &cli.Command{
		Name:    "run",
		Summary: "Build, package, and upload a binary to a GitHub release",
		Description: `Build a Rust binary with cargo and attach it to a GitHub release.

Inside a workflow triggered by a release event, the release comes from
the event payload and only the "created" action is acted on; other
events are skipped with a successful exit. Outside a release event,
name the release with --release-tag or --release-id.

Settings are read from the config file, then the action inputs
(INPUT_*), then flags; later sources win. The token comes from the
token input or GITHUB_TOKEN.`,
		Usage: "bureau-release run [flags]",
		Examples: []cli.Example{
			{
				Description: "Publish a tar.gz and a zip of the default binary with checksums",
				Command:     "bureau-release run --archive --archive-types tar.gz,zip --asset-digest",
			},
			{
				Description: "Preview asset names for an existing release without uploading",
				Command:     "bureau-release run --release-tag v1.4.0 --repository acme/widget --dry-run",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet = cli.FlagsFromParams("run", &params)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			return runRelease(ctx, env, &params, flagSet)
		},
	}
}

func runRelease(ctx context.Context, env Environment, params *runParams, flagSet *pflag.FlagSet) error {
	logger := env.logger().With("command", "run")
	runtime := env.runtime(logger)

	// Configuration problems surface as annotations too.
	result, err := publish(ctx, env, runtime, params, flagSet, logger)
	if err != nil {
		if runtime.InActions() {
			runtime.Errorf("%v", err)
			return &cli.ExitError{Code: 1}
		}
		return err
	}
	if result == nil {
		return nil
	}

	reportResult(env, runtime, *result, params.DryRun)
	return nil
}

// publish runs the pipeline. A nil Result with a nil error means the
// triggering event was skipped.
func publish(ctx context.Context, env Environment, runtime *actions.Runtime, params *runParams, flagSet *pflag.FlagSet, logger *slog.Logger) (*release.Result, error) {
	cfg, err := loadSettings(env, runtime, params.Config, flagSet)
	if err != nil {
		return nil, err
	}
	runtime.Mask(cfg.Token)

	target, skip, err := eventTarget(env, runtime, params, logger)
	if err != nil || skip {
		return nil, err
	}

	apiURL := firstNonEmpty(cfg.APIURL, target.apiURL)
	uploadURL := firstNonEmpty(cfg.UploadURL, github.UploadURLForAPI(apiURL))
	client, err := github.NewClient(github.Config{
		BaseURL:    apiURL,
		UploadURL:  uploadURL,
		Token:      cfg.Token,
		UserAgent:  version.UserAgent(),
		HTTPClient: env.HTTPClient,
		Clock:      env.clock(),
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	if target.release.ID == 0 {
		target.release, err = lookupRelease(ctx, client, target.repository, params)
		if err != nil {
			return nil, err
		}
	}

	request, err := cfg.Request(target.repository, target.release)
	if err != nil {
		return nil, err
	}
	request.DryRun = params.DryRun

	logger = logger.With(
		"repository", target.repository.String(),
		"release", target.release.TagName,
		"release_id", target.release.ID,
	)
	pipeline := &release.Pipeline{
		Toolchain: env.toolchain(params.Cargo, params.Rustc, logger),
		Client:    client,
		Groups:    runtime,
		Clock:     env.clock(),
		Logger:    logger,
	}

	result, err := pipeline.Run(ctx, request)
	if err != nil {
		for _, asset := range result.Assets {
			if asset.Uploaded {
				logger.Warn("asset was uploaded before the failure", "name", asset.Name)
			}
		}
		if github.IsAlreadyExists(err) {
			return nil, fmt.Errorf("%w (the release already has an asset with this name: delete it or set asset or asset_format)", err)
		}
		return nil, err
	}
	return &result, nil
}

// eventTarget decides where to publish. With --release-tag or
// --release-id the release is named explicitly and looked up later;
// otherwise it comes from the triggering event, and events other than
// a created release are skipped.
func eventTarget(env Environment, runtime *actions.Runtime, params *runParams, logger *slog.Logger) (releaseTarget, bool, error) {
	if params.ReleaseTag != "" || params.ReleaseID != 0 {
		repository, err := parseRepository(firstNonEmpty(params.Repository, env.Getenv("GITHUB_REPOSITORY")))
		if err != nil {
			return releaseTarget{}, false, err
		}
		return releaseTarget{repository: repository, apiURL: env.Getenv("GITHUB_API_URL")}, false, nil
	}

	if !runtime.InActions() {
		return releaseTarget{}, false, errors.New("not running as a GitHub Actions step: pass --release-tag or --release-id to name the release")
	}

	trigger, err := runtime.Trigger()
	if err != nil {
		return releaseTarget{}, false, fmt.Errorf("%w (outside a release workflow, pass --release-tag or --release-id)", err)
	}
	if run, reason := trigger.ShouldRun(); !run {
		logger.Info("skipping: requires a created release", "reason", reason)
		return releaseTarget{}, true, nil
	}

	repository := release.Repository{Owner: trigger.Owner, Name: trigger.Repo}
	if params.Repository != "" {
		if repository, err = parseRepository(params.Repository); err != nil {
			return releaseTarget{}, false, err
		}
	}
	return releaseTarget{
		repository: repository,
		release: release.Release{
			ID:      trigger.Release.ID,
			TagName: trigger.Release.TagName,
			Name:    trigger.Release.Name,
		},
		apiURL: trigger.APIURL,
	}, false, nil
}

func lookupRelease(ctx context.Context, client *github.Client, repository release.Repository, params *runParams) (release.Release, error) {
	var found *github.Release
	var err error
	if params.ReleaseID != 0 {
		found, err = client.GetRelease(ctx, repository.Owner, repository.Name, int64(params.ReleaseID))
	} else {
		found, err = client.GetReleaseByTag(ctx, repository.Owner, repository.Name, params.ReleaseTag)
	}
	if err != nil {
		if github.IsNotFound(err) {
			return release.Release{}, fmt.Errorf("release not found in %s: %w", repository, err)
		}
		return release.Release{}, fmt.Errorf("looking up release: %w", err)
	}
	return release.Release{ID: found.ID, TagName: found.TagName, Name: found.Name}, nil
}

func parseRepository(value string) (release.Repository, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return release.Repository{}, errors.New("repository not set (pass --repository owner/name or set GITHUB_REPOSITORY)")
	}
	owner, name, found := strings.Cut(value, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return release.Repository{}, fmt.Errorf("repository %q is not in owner/name form", value)
	}
	return release.Repository{Owner: owner, Name: name}, nil
}

// reportResult prints the published names, sets the step outputs, and
// writes the job summary.
func reportResult(env Environment, runtime *actions.Runtime, result release.Result, dryRun bool) {
	var names []string
	for _, asset := range result.Assets {
		names = append(names, asset.Name)
		fmt.Fprintln(env.Stdout, asset.Name)
		if asset.Sidecar != "" {
			names = append(names, asset.Sidecar)
			fmt.Fprintln(env.Stdout, asset.Sidecar)
		}
	}

	for _, conflict := range result.Conflicts {
		runtime.Warningf("release already has an asset named %s", conflict)
	}

	if dryRun {
		return
	}

	encoded, err := json.Marshal(names)
	if err == nil {
		runtime.SetOutput("assets", string(encoded))
	}
	runtime.SetOutput("binary", result.Target.Name)
	runtime.SetOutput("target", result.Artifact.Triple)
	runtime.AddStepSummary(stepSummary(result))
}

func stepSummary(result release.Result) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "### Release assets for `%s` (%s)\n\n", result.Target.Name, result.Artifact.Triple)
	builder.WriteString("| Asset | Checksum |\n|---|---|\n")
	for _, asset := range result.Assets {
		checksum := "-"
		if asset.Sidecar != "" {
			checksum = "`" + asset.Sidecar + "`"
		}
		fmt.Fprintf(&builder, "| `%s` | %s |\n", asset.Name, checksum)
	}
	return builder.String()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// Compile-time check that the runtime folds pipeline stages into log
// groups.
var _ release.Grouper = (*actions.Runtime)(nil)
