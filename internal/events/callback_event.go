package events

// CallbackEvent calls listener functions synchronously, in registration
// order, on the goroutine that calls Notify.
type CallbackEvent[T any] struct {
	reg registry[T, func(T)]
}

// NewCallbackEvent creates a CallbackEvent. With replayLast, a new listener
// is called with the most recent value, if any, before Listen returns.
func NewCallbackEvent[T any](replayLast bool) *CallbackEvent[T] {
	e := &CallbackEvent[T]{}
	e.reg.replayLast = replayLast
	return e
}

// Listen registers fn and returns a function that removes it
func (e *CallbackEvent[T]) Listen(fn func(T)) func() {
	if fn == nil {
		panic("CallbackEvent: callback cannot be nil")
	}
	id, last, replay := e.reg.add(fn)
	if replay {
		fn(last)
	}
	return func() { e.reg.remove(id) }
}

// Notify calls every listener with value
func (e *CallbackEvent[T]) Notify(value T) {
	for _, fn := range e.reg.publish(value) {
		fn(value)
	}
}

// ListenerCount returns the number of registered listeners
func (e *CallbackEvent[T]) ListenerCount() int {
	return e.reg.count()
}
