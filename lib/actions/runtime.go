// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sethvargo/go-githubactions"
)

// Config holds configuration for a Runtime. Every field is optional.
type Config struct {
	// Writer receives workflow commands. Defaults to os.Stdout, which
	// is where the runner parses them.
	Writer io.Writer

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// Logger receives the fallback output when not running inside
	// GitHub Actions. Defaults to slog.Default().
	Logger *slog.Logger
}

// Runtime is the interface to the GitHub Actions runner.
type Runtime struct {
	action *githubactions.Action
	getenv func(string) string
	logger *slog.Logger
}

// New creates a Runtime.
func New(config Config) *Runtime {
	writer := config.Writer
	if writer == nil {
		writer = os.Stdout
	}
	getenv := config.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		action: githubactions.New(
			githubactions.WithWriter(writer),
			githubactions.WithGetenv(githubactions.GetenvFunc(getenv)),
		),
		getenv: getenv,
		logger: logger,
	}
}

// InActions reports whether the process runs as a GitHub Actions step.
func (runtime *Runtime) InActions() bool {
	return runtime.getenv("GITHUB_ACTIONS") == "true"
}

// LookupInput returns the trimmed value of an action input
// (INPUT_<NAME>) and whether it was set to a non-empty value.
func (runtime *Runtime) LookupInput(name string) (string, bool) {
	value := runtime.action.GetInput(name)
	return value, value != ""
}

// Group opens a collapsible log group.
func (runtime *Runtime) Group(title string) {
	if !runtime.InActions() {
		runtime.logger.Info("stage started", "stage", title)
		return
	}
	runtime.action.Group(title)
}

// EndGroup closes the current log group.
func (runtime *Runtime) EndGroup() {
	if !runtime.InActions() {
		return
	}
	runtime.action.EndGroup()
}

// SetOutput records a step output for later workflow steps through
// the GITHUB_OUTPUT file. Outside Actions, or on a runner that provides
// no output file, the value is logged instead.
func (runtime *Runtime) SetOutput(name, value string) {
	if !runtime.InActions() || runtime.getenv("GITHUB_OUTPUT") == "" {
		runtime.logger.Info("step output", "name", name, "value", value)
		return
	}
	runtime.action.SetOutput(name, value)
}

// AddStepSummary appends markdown to the job summary page. No-op
// outside Actions.
func (runtime *Runtime) AddStepSummary(markdown string) {
	if !runtime.InActions() || runtime.getenv("GITHUB_STEP_SUMMARY") == "" {
		return
	}
	runtime.action.AddStepSummary(markdown)
}

// Mask hides value from all subsequent log output.
func (runtime *Runtime) Mask(value string) {
	if value == "" || !runtime.InActions() {
		return
	}
	runtime.action.AddMask(value)
}

// Errorf emits an error annotation so the failing step is highlighted
// in the workflow UI. No-op outside Actions.
func (runtime *Runtime) Errorf(format string, args ...any) {
	if !runtime.InActions() {
		return
	}
	runtime.action.Errorf(format, args...)
}

// Warningf emits a warning annotation. Outside Actions it is logged.
func (runtime *Runtime) Warningf(format string, args ...any) {
	if !runtime.InActions() {
		runtime.logger.Warn("warning", "message", fmt.Sprintf(format, args...))
		return
	}
	runtime.action.Warningf(format, args...)
}
