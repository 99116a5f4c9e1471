package feedback

import (
	"log"
	"sync"

	"github.com/lowaak/smart-trainer/workout-runner/internal/go_func_utils"
)

// Sink performs the actual audio, haptic and visual output
type Sink interface {
	PlaySound(sound SoundID, event Event) error
	Vibrate(pattern HapticPattern) error
	Flash(token FlashToken) error
}

const defaultQueueSize = 64

// CoordinatorOptions tunes a Coordinator. Zero values use defaults.
type CoordinatorOptions struct {
	QueueSize int
	Cues      map[EventKind]Cue
}

// Coordinator turns engine events into cue requests on a Sink.
//
// Dispatch never blocks: events go onto a bounded queue drained by a single
// worker, which keeps cues in event order while a slow sink only delays
// later cues, never the engine.
type Coordinator struct {
	sink   Sink
	cues   map[EventKind]Cue
	logger *log.Logger

	queue chan Event

	mu           sync.Mutex
	closed       bool
	dropped      int
	doneChan     chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewCoordinator starts the dispatch worker
func NewCoordinator(sink Sink, logger *log.Logger, opts CoordinatorOptions) *Coordinator {
	if sink == nil {
		panic("Coordinator: sink cannot be nil")
	}
	if logger == nil {
		panic("Coordinator: logger cannot be nil")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Cues == nil {
		opts.Cues = DefaultCues
	}

	c := &Coordinator{
		sink:     sink,
		cues:     opts.Cues,
		logger:   logger,
		queue:    make(chan Event, opts.QueueSize),
		doneChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { c.run() })

	return c
}

// Dispatch queues a cue request for event. Events without a cue are ignored.
func (c *Coordinator) Dispatch(event Event) {
	if _, ok := Lookup(c.cues, event.Kind); !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.queue <- event:
	default:
		c.dropped++
		c.logger.Printf("Coordinator: queue full, dropped %s cue (%d dropped)", event.Kind, c.dropped)
	}
}

// Dropped returns how many cues were dropped because the queue was full
func (c *Coordinator) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Shutdown plays out already queued cues and stops the worker.
// Safe to call multiple times.
func (c *Coordinator) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.queue)
		c.mu.Unlock()
		c.wg.Wait()
		c.logger.Printf("Coordinator: Shutdown complete")
	})
}

func (c *Coordinator) run() {
	defer c.wg.Done()
	for event := range c.queue {
		c.play(event)
	}
}

// play issues the three parts of a cue independently; one failing part does
// not stop the others.
func (c *Coordinator) play(event Event) {
	cue, ok := Lookup(c.cues, event.Kind)
	if !ok {
		return
	}

	if cue.Sound != "" {
		c.guard(event, "sound", func() error { return c.sink.PlaySound(cue.Sound, event) })
	}
	if cue.Haptic != "" {
		c.guard(event, "haptic", func() error { return c.sink.Vibrate(cue.Haptic) })
	}
	if cue.Flash != "" {
		c.guard(event, "flash", func() error { return c.sink.Flash(cue.Flash) })
	}
}

func (c *Coordinator) guard(event Event, part string, fn func() error) {
	var err error
	go_func_utils.SafeCall(c.logger, "Coordinator", func() { err = fn() })
	if err != nil {
		c.logger.Printf("Coordinator: %s cue for %s failed: %v", part, event.Kind, err)
	}
}
