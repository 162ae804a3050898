package widget

import "time"

// Scheduler runs deferred and background work for the widget. Callbacks
// must only post events back to the loop, never touch widget state.
type Scheduler interface {
	// After runs fn once, d from now.
	After(d time.Duration, fn func())
	// Go runs fn off the event loop.
	Go(fn func())
}

type realScheduler struct{}

// RealScheduler uses wall-clock timers and goroutines.
func RealScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

func (realScheduler) Go(fn func()) {
	go fn()
}
