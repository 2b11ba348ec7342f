// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source used by code that needs to be
// deterministic under test. Real returns the wall-clock
// implementation; Fake returns a manually advanced one.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time after
	// duration d elapses. If d <= 0, the channel receives
	// immediately.
	After(d time.Duration) <-chan time.Time
}

// Since returns the time elapsed since start according to clock.
func Since(clock Clock, start time.Time) time.Duration {
	return clock.Now().Sub(start)
}
