// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stage

import "time"

// =============================================================================
// CLOCK ABSTRACTION
// =============================================================================

// Timer is a cancellable delayed callback handle.
type Timer interface {
	// Stop cancels the timer. It reports whether the callback was
	// prevented from running; a false return means it already fired or
	// was stopped before.
	Stop() bool
}

// Clock schedules delayed callbacks. The production implementation wraps
// time.AfterFunc; tests substitute a manual clock so fallback behavior can
// be exercised without real sleeps.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

type systemTimer struct {
	t *time.Timer
}

func (t systemTimer) Stop() bool {
	return t.t.Stop()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return systemTimer{t: time.AfterFunc(d, f)}
}

// SystemClock returns the real wall-clock scheduler.
func SystemClock() Clock {
	return systemClock{}
}
