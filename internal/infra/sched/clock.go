package sched

import "time"

// Clock abstracts wall time so scheduler tests can drive timers by hand.
type Clock interface {
	Now() time.Time
	// AfterFunc runs fn on its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is the cancellable handle returned by AfterFunc.
type Timer interface {
	// Stop prevents the callback from running. It reports false when the
	// timer already fired or was stopped before.
	Stop() bool
}

type systemClock struct{}

// SystemClock returns the wall clock backed by the time package.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
