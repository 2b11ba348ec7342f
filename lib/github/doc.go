// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package github provides a typed client for the GitHub REST release
// endpoints used to publish build artifacts.
//
// The client authenticates with a bearer token (the workflow's
// GITHUB_TOKEN or a personal access token). It tracks the
// X-RateLimit-* headers and pauses before a request when the quota is
// known to be exhausted, caches GET responses by ETag so repeated
// release lookups do not spend quota, and maps non-2xx responses to
// *APIError. A rate-limited request is not retried; the error is
// returned to the caller.
//
// API requests go to BaseURL (https://api.github.com). Asset uploads
// go to the separate UploadURL host (https://uploads.github.com). GitHub
// Enterprise Server installs set both. Non-HTTPS URLs are refused.
package github
