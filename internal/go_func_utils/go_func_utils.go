package go_func_utils

import (
	"log"
	"runtime/debug"
)

// SafeGo runs fn on a new goroutine and logs a panic with its stack before
// re-panicking, so crashes in background loops still reach the log file
// even when a terminal UI owns stdout.
func SafeGo(logger *log.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("PANIC: %v\n%s", r, debug.Stack())
				panic(r)
			}
		}()
		fn()
	}()
}

// SafeCall runs fn on the calling goroutine and converts a panic into a log
// line. Used for best-effort side effects (cues, checkpoint writes) that must
// never take the engine down. Returns false if fn panicked.
func SafeCall(logger *log.Logger, what string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("%s: recovered panic: %v\n%s", what, r, debug.Stack())
			ok = false
		}
	}()
	fn()
	return true
}
