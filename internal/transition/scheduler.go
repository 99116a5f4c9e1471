package transition

import (
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/workout-runner/internal/clock"
)

// Kind identifies the waiting period a transition represents
type Kind string

const (
	KindNone         Kind = ""
	KindPreparation  Kind = "preparation"
	KindRest         Kind = "rest"
	KindNextExercise Kind = "next_exercise"
)

// IsCountdown returns true for transitions announced as a "3..2..1" countdown
// that run while the workout clock is suspended.
func (k Kind) IsCountdown() bool {
	return k == KindPreparation || k == KindNextExercise
}

// Callbacks are invoked through the scheduler's executor
type Callbacks struct {
	// OnTick receives the whole seconds remaining, once at Schedule/Resume
	// and once per second boundary afterwards. Optional.
	OnTick func(remainingSec int)
	// OnComplete runs once when the period elapses, unless cancelled first
	OnComplete func()
}

type pendingTransition struct {
	id        uint64
	kind      Kind
	deadline  time.Time
	remaining time.Duration // valid while paused
	paused    bool
	callbacks Callbacks
	timer     clock.Timer
	armSeq    uint64
}

// Scheduler runs at most one transition at a time
type Scheduler struct {
	source  clock.Source
	execute clock.Executor
	logger  *log.Logger

	mu      sync.Mutex
	pending *pendingTransition
	nextID  uint64
}

// NewScheduler creates an idle scheduler
func NewScheduler(source clock.Source, execute clock.Executor, logger *log.Logger) *Scheduler {
	if source == nil {
		panic("Scheduler: source cannot be nil")
	}
	if execute == nil {
		panic("Scheduler: execute cannot be nil")
	}
	if logger == nil {
		panic("Scheduler: logger cannot be nil")
	}
	return &Scheduler{
		source:  source,
		execute: execute,
		logger:  logger,
	}
}

// Schedule starts a transition of the given length and returns its handle.
// A transition that is still pending is cancelled first; callers are
// expected to Cancel explicitly, so this is logged as a bug.
// A non-positive duration completes immediately.
func (s *Scheduler) Schedule(kind Kind, d time.Duration, callbacks Callbacks) uint64 {
	if callbacks.OnComplete == nil {
		panic("Scheduler: OnComplete cannot be nil")
	}

	s.mu.Lock()
	if s.pending != nil {
		s.logger.Printf("Scheduler: BUG: pending %s transition superseded by %s", s.pending.kind, kind)
		s.cancelLocked()
	}
	s.nextID++
	id := s.nextID

	if d <= 0 {
		s.mu.Unlock()
		s.logger.Printf("Scheduler: %s transition has no duration, completing now", kind)
		callbacks.OnComplete()
		return id
	}

	p := &pendingTransition{
		id:        id,
		kind:      kind,
		deadline:  s.source.Now().Add(d),
		callbacks: callbacks,
	}
	s.pending = p
	s.armLocked(p, d)
	s.mu.Unlock()

	s.logger.Printf("Scheduler: %s transition scheduled for %v", kind, d)
	if callbacks.OnTick != nil {
		callbacks.OnTick(ceilSeconds(d))
	}
	return id
}

// Cancel drops the pending transition so its OnComplete never runs.
// Returns false if nothing was pending; calling it again is a no-op.
func (s *Scheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return false
	}
	s.logger.Printf("Scheduler: %s transition cancelled", s.pending.kind)
	s.cancelLocked()
	return true
}

// Pause freezes the pending transition, keeping its exact remaining time
func (s *Scheduler) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pending
	if p == nil || p.paused {
		return false
	}
	s.stopTimerLocked(p)
	p.remaining = p.deadline.Sub(s.source.Now())
	if p.remaining < 0 {
		p.remaining = 0
	}
	p.paused = true
	return true
}

// Resume re-arms a paused transition for its remaining time
func (s *Scheduler) Resume() bool {
	s.mu.Lock()
	p := s.pending
	if p == nil || !p.paused {
		s.mu.Unlock()
		return false
	}
	p.paused = false
	p.deadline = s.source.Now().Add(p.remaining)
	s.armLocked(p, p.remaining)
	onTick := p.callbacks.OnTick
	remaining := p.remaining
	s.mu.Unlock()

	if onTick != nil && remaining > 0 {
		onTick(ceilSeconds(remaining))
	}
	return true
}

// Pending returns the kind of the pending transition, if any
func (s *Scheduler) Pending() (Kind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return KindNone, false
	}
	return s.pending.kind, true
}

// Remaining returns the time left on the pending transition
func (s *Scheduler) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pending
	if p == nil {
		return 0
	}
	if p.paused {
		return p.remaining
	}
	if left := p.deadline.Sub(s.source.Now()); left > 0 {
		return left
	}
	return 0
}

func (s *Scheduler) cancelLocked() {
	s.stopTimerLocked(s.pending)
	s.pending = nil
}

func (s *Scheduler) stopTimerLocked(p *pendingTransition) {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.armSeq++
}

// armLocked waits until the whole-second count of the remaining time drops,
// or until the deadline when less than a second is left.
func (s *Scheduler) armLocked(p *pendingTransition, remaining time.Duration) {
	delay := remaining % time.Second
	if delay == 0 {
		delay = time.Second
	}
	if remaining <= 0 {
		delay = 0
	}
	id, seq := p.id, p.armSeq
	p.timer = s.source.AfterFunc(delay, func() {
		s.execute(func() { s.fire(id, seq) })
	})
}

func (s *Scheduler) fire(id, seq uint64) {
	s.mu.Lock()
	p := s.pending
	if p == nil || p.id != id || p.armSeq != seq || p.paused {
		s.mu.Unlock()
		return
	}

	remaining := p.deadline.Sub(s.source.Now())
	if remaining <= 0 {
		s.pending = nil
		onComplete := p.callbacks.OnComplete
		s.mu.Unlock()
		s.logger.Printf("Scheduler: %s transition complete", p.kind)
		onComplete()
		return
	}

	p.armSeq++
	s.armLocked(p, remaining)
	onTick := p.callbacks.OnTick
	s.mu.Unlock()

	if onTick != nil {
		onTick(ceilSeconds(remaining))
	}
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
