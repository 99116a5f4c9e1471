package events

import "sync/atomic"

// ChannelEvent fans values out to listener channels. Sends never block: a
// listener whose buffer is full misses that value.
type ChannelEvent[T any] struct {
	reg     registry[T, chan<- T]
	dropped atomic.Uint64
}

// NewChannelEvent creates a ChannelEvent. With replayLast, a new listener
// immediately receives the most recent value, if any.
func NewChannelEvent[T any](replayLast bool) *ChannelEvent[T] {
	e := &ChannelEvent[T]{}
	e.reg.replayLast = replayLast
	return e
}

// Listen registers ch and returns a function that removes it
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("ChannelEvent: channel cannot be nil")
	}
	id, last, replay := e.reg.add(ch)
	if replay {
		e.send(ch, last)
	}
	return func() { e.reg.remove(id) }
}

// Notify sends value to every listener
func (e *ChannelEvent[T]) Notify(value T) {
	for _, ch := range e.reg.publish(value) {
		e.send(ch, value)
	}
}

// Latest returns the last value passed to Notify
func (e *ChannelEvent[T]) Latest() (T, bool) {
	return e.reg.latest()
}

// ListenerCount returns the number of registered listeners
func (e *ChannelEvent[T]) ListenerCount() int {
	return e.reg.count()
}

// Dropped returns how many sends were skipped because a listener was full
func (e *ChannelEvent[T]) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *ChannelEvent[T]) send(ch chan<- T, value T) {
	select {
	case ch <- value:
	default:
		e.dropped.Add(1)
	}
}
