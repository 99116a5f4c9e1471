package feedback

import (
	"bytes"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type recordingSink struct {
	mu       sync.Mutex
	sounds   []SoundID
	events   []Event
	haptics  []HapticPattern
	flashes  []FlashToken
	gate     chan struct{} // when set, PlaySound waits on it
	soundErr error
	panicOn  HapticPattern
}

func (s *recordingSink) PlaySound(sound SoundID, event Event) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sounds = append(s.sounds, sound)
	s.events = append(s.events, event)
	return s.soundErr
}

func (s *recordingSink) Vibrate(pattern HapticPattern) error {
	if pattern == s.panicOn {
		panic("motor jammed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.haptics = append(s.haptics, pattern)
	return nil
}

func (s *recordingSink) Flash(token FlashToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, token)
	return nil
}

func (s *recordingSink) remaining() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.RemainingSec)
	}
	return out
}

func TestDefaultCues_CoverEveryEvent(t *testing.T) {
	kinds := []EventKind{
		EventCountdownTick, EventExerciseStart, EventRestStart, EventSetComplete,
		EventWorkoutComplete, EventPaused, EventResumed, EventWorkoutStopped,
	}
	for _, kind := range kinds {
		cue, ok := Lookup(DefaultCues, kind)
		require.True(t, ok, "missing cue for %s", kind)
		assert.NotEmpty(t, cue.Sound)
	}

	_, ok := Lookup(DefaultCues, "unknown")
	assert.False(t, ok)
}

func TestCoordinator_PreservesOrder(t *testing.T) {
	sink := &recordingSink{}
	c := NewCoordinator(sink, log.New(&syncBuffer{}, "", 0), CoordinatorOptions{})

	c.Dispatch(Event{Kind: EventCountdownTick, RemainingSec: 3})
	c.Dispatch(Event{Kind: EventCountdownTick, RemainingSec: 2})
	c.Dispatch(Event{Kind: EventCountdownTick, RemainingSec: 1})
	c.Dispatch(Event{Kind: EventExerciseStart})
	c.Shutdown()

	assert.Equal(t, []int{3, 2, 1, 0}, sink.remaining())
	assert.Equal(t, []SoundID{SoundCountdownBeep, SoundCountdownBeep, SoundCountdownBeep, SoundStartWhistle}, sink.sounds)
	assert.Equal(t, []FlashToken{FlashGo}, sink.flashes)
}

func TestCoordinator_SlowSinkDoesNotBlockDispatch(t *testing.T) {
	sink := &recordingSink{gate: make(chan struct{})}
	c := NewCoordinator(sink, log.New(&syncBuffer{}, "", 0), CoordinatorOptions{QueueSize: 2})

	start := time.Now()
	for i := 0; i < 10; i++ {
		c.Dispatch(Event{Kind: EventSetComplete, Set: i})
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.GreaterOrEqual(t, c.Dropped(), 7)

	close(sink.gate)
	c.Shutdown()
}

func TestCoordinator_FailuresAreLoggedNotPropagated(t *testing.T) {
	logs := &syncBuffer{}
	sink := &recordingSink{soundErr: errors.New("no audio device"), panicOn: HapticCelebration}
	c := NewCoordinator(sink, log.New(logs, "", 0), CoordinatorOptions{})

	c.Dispatch(Event{Kind: EventWorkoutComplete})
	c.Dispatch(Event{Kind: EventPaused})
	c.Shutdown()

	out := logs.String()
	assert.Contains(t, out, "sound cue for workout_complete failed: no audio device")
	assert.Contains(t, out, "recovered panic: motor jammed")

	// Flash still played after the haptic panicked, and the next event went through
	assert.Equal(t, []FlashToken{FlashDone, FlashPaused}, sink.flashes)
	assert.Equal(t, []HapticPattern{HapticTick}, sink.haptics)
}

func TestCoordinator_CustomTableAndUnmappedEvents(t *testing.T) {
	sink := &recordingSink{}
	table := map[EventKind]Cue{EventRestStart: {Flash: FlashRest}}
	c := NewCoordinator(sink, log.New(&syncBuffer{}, "", 0), CoordinatorOptions{Cues: table})

	c.Dispatch(Event{Kind: EventExerciseStart})
	c.Dispatch(Event{Kind: EventRestStart})
	c.Shutdown()

	assert.Empty(t, sink.sounds)
	assert.Equal(t, []FlashToken{FlashRest}, sink.flashes)
}

func TestCoordinator_DispatchAfterShutdown(t *testing.T) {
	sink := &recordingSink{}
	c := NewCoordinator(sink, log.New(&syncBuffer{}, "", 0), CoordinatorOptions{})
	c.Shutdown()
	c.Shutdown()

	assert.NotPanics(t, func() { c.Dispatch(Event{Kind: EventResumed}) })
	assert.Empty(t, sink.sounds)
}
