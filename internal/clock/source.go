package clock

import "time"

// Timer is a pending callback that can be stopped
type Timer interface {
	// Stop prevents the timer from firing. Returns false if it already fired
	// or was already stopped.
	Stop() bool
}

// Source provides wall-clock time and one-shot timers
type Source interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Executor runs f serialized with every other mutation of the owner's state.
// Timer callbacks are routed through it so a stale callback can be detected
// and dropped on the same goroutine that cancels timers.
type Executor func(f func())

// Direct runs f on the calling goroutine. Suitable when all calls already
// happen on a single goroutine, as in tests driven by a fake source.
func Direct(f func()) { f() }

type systemSource struct{}

// System returns the real wall clock
func System() Source {
	return systemSource{}
}

func (systemSource) Now() time.Time { return time.Now() }

func (systemSource) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
