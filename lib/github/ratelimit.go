// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bureau-foundation/bureau-release/lib/clock"
)

// rateLimitTracker records the rate limit state from the most recent
// response so the next request can pause until the window resets
// instead of being rejected.
type rateLimitTracker struct {
	mu        sync.Mutex
	remaining int
	reset     time.Time
	known     bool
	clock     clock.Clock
}

func newRateLimitTracker(clock clock.Clock) *rateLimitTracker {
	return &rateLimitTracker{clock: clock}
}

// update records X-RateLimit-Remaining and X-RateLimit-Reset. Responses
// without both headers (uploads host, some error pages) leave the
// state untouched.
func (tracker *rateLimitTracker) update(header http.Header) {
	remaining, err := strconv.Atoi(header.Get("X-RateLimit-Remaining"))
	if err != nil {
		return
	}
	resetUnix, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return
	}

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	tracker.remaining = remaining
	tracker.reset = time.Unix(resetUnix, 0)
	tracker.known = true
}

// delay returns how long to wait before the next request. Zero when
// quota remains, the state is unknown, or the reset time has passed.
func (tracker *rateLimitTracker) delay() time.Duration {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if !tracker.known || tracker.remaining > 0 {
		return 0
	}
	if wait := tracker.reset.Sub(tracker.clock.Now()); wait > 0 {
		return wait
	}
	return 0
}
