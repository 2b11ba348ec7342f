// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction.
//
// Code that waits (the GitHub client's rate-limit pause) or measures
// elapsed time (per-stage durations in the release pipeline) accepts a
// Clock instead of calling time.Now or time.After directly. Production
// wiring uses Real; tests use Fake and drive time with Advance:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go client.GetRelease(ctx, "owner", "repo", 1)
//	c.WaitForTimers(1)
//	c.Advance(time.Minute)
package clock
