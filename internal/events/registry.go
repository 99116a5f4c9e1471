package events

import "sync"

// registry keeps listeners in registration order together with the last
// value published, shared by the channel and callback flavours.
type registry[T, L any] struct {
	mu         sync.Mutex
	nextID     uint64
	listeners  []entry[L]
	replayLast bool
	last       T
	hasLast    bool
}

type entry[L any] struct {
	id       uint64
	listener L
}

func (r *registry[T, L]) add(listener L) (id uint64, replay T, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.listeners = append(r.listeners, entry[L]{id: r.nextID, listener: listener})
	return r.nextID, r.last, r.replayLast && r.hasLast
}

func (r *registry[T, L]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.listeners {
		if e.id == id {
			r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
			return
		}
	}
}

// publish records value and returns a snapshot of the listeners to call
// outside the lock.
func (r *registry[T, L]) publish(value T) []L {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = value
	r.hasLast = true
	out := make([]L, len(r.listeners))
	for i, e := range r.listeners {
		out[i] = e.listener
	}
	return out
}

func (r *registry[T, L]) latest() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.hasLast
}

func (r *registry[T, L]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
