package clock

import (
	"log"
	"sync"
	"time"
)

// Clock produces one elapsed-time tick per wall-clock second while running.
//
// Elapsed time is always derived from a reference instant rather than by
// counting callbacks, so late or missed timer callbacks never accumulate
// error. Suspending leaves the reference untouched; resuming shifts it
// forward by the time spent suspended.
type Clock struct {
	source  Source
	execute Executor
	onTick  func(totalElapsedSec int)
	logger  *log.Logger

	mu          sync.Mutex
	started     bool
	running     bool
	reference   time.Time
	suspendedAt time.Time
	timer       Timer
	seq         uint64
}

// New creates a stopped clock. onTick is invoked through execute with the
// whole seconds elapsed since Start, excluding suspended time.
func New(source Source, execute Executor, onTick func(totalElapsedSec int), logger *log.Logger) *Clock {
	if source == nil {
		panic("Clock: source cannot be nil")
	}
	if execute == nil {
		panic("Clock: execute cannot be nil")
	}
	if onTick == nil {
		panic("Clock: onTick cannot be nil")
	}
	if logger == nil {
		panic("Clock: logger cannot be nil")
	}
	return &Clock{
		source:  source,
		execute: execute,
		onTick:  onTick,
		logger:  logger,
	}
}

// Start begins ticking as if elapsed had already passed
func (c *Clock) Start(elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.reference = c.source.Now().Add(-elapsed)
	c.started = true
	c.running = true
	c.armLocked()
	c.logger.Printf("Clock: started at %v elapsed", elapsed)
}

// Suspend stops ticking without moving the reference
func (c *Clock) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.stopTimerLocked()
	c.suspendedAt = c.source.Now()
	c.running = false
}

// Resume continues ticking, crediting none of the suspended time
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started || c.running {
		return
	}
	suspendedFor := c.source.Now().Sub(c.suspendedAt)
	c.reference = c.reference.Add(suspendedFor)
	c.running = true
	c.armLocked()
	c.logger.Printf("Clock: resumed after %v suspended", suspendedFor)
}

// Stop silences the clock until the next Start
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}
	if c.running {
		c.suspendedAt = c.source.Now()
	}
	c.stopTimerLocked()
	c.started = false
	c.running = false
}

// Started returns true between Start and Stop
func (c *Clock) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Running returns true if the clock is started and not suspended
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Elapsed returns the active time since Start
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedLocked()
}

// ElapsedSeconds returns Elapsed truncated to whole seconds
func (c *Clock) ElapsedSeconds() int {
	return int(c.Elapsed() / time.Second)
}

func (c *Clock) elapsedLocked() time.Duration {
	if c.reference.IsZero() {
		return 0
	}
	if c.running {
		return c.source.Now().Sub(c.reference)
	}
	return c.suspendedAt.Sub(c.reference)
}

func (c *Clock) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.seq++
}

// armLocked schedules the next tick at the next whole-second boundary
// relative to the reference.
func (c *Clock) armLocked() {
	elapsed := c.source.Now().Sub(c.reference)
	next := (elapsed/time.Second + 1) * time.Second
	seq := c.seq
	c.timer = c.source.AfterFunc(next-elapsed, func() {
		c.execute(func() { c.fire(seq) })
	})
}

func (c *Clock) fire(seq uint64) {
	c.mu.Lock()
	if seq != c.seq || !c.running {
		c.mu.Unlock()
		return
	}
	total := int(c.elapsedLocked() / time.Second)
	c.seq++
	c.armLocked()
	c.mu.Unlock()

	c.onTick(total)
}
