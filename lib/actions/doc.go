// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package actions adapts the GitHub Actions runtime for the release
// tool: the triggering event, action inputs, collapsible log groups,
// step outputs, the job summary, and error annotations.
//
// Workflow commands are written through sethvargo/go-githubactions.
// Outside a workflow run (GITHUB_ACTIONS unset) group boundaries
// become ordinary log lines and annotations are suppressed, so the
// same code paths work from a developer's terminal.
package actions
