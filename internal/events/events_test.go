package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelEvent_NotifyAndUnregister(t *testing.T) {
	event := NewChannelEvent[string](false)
	ch := make(chan string, 4)
	unregister := event.Listen(ch)
	assert.Equal(t, 1, event.ListenerCount())

	event.Notify("a")
	event.Notify("b")
	assert.Equal(t, "a", <-ch)
	assert.Equal(t, "b", <-ch)

	unregister()
	unregister()
	assert.Equal(t, 0, event.ListenerCount())

	event.Notify("c")
	assert.Len(t, ch, 0)
}

func TestChannelEvent_ReplaysLatestToNewListener(t *testing.T) {
	event := NewChannelEvent[int](true)

	early := make(chan int, 1)
	event.Listen(early)
	assert.Len(t, early, 0, "nothing to replay before the first Notify")

	event.Notify(7)
	<-early

	late := make(chan int, 1)
	event.Listen(late)
	assert.Equal(t, 7, <-late)

	latest, ok := event.Latest()
	require.True(t, ok)
	assert.Equal(t, 7, latest)
}

func TestChannelEvent_NoReplayWhenDisabled(t *testing.T) {
	event := NewChannelEvent[int](false)
	event.Notify(1)

	ch := make(chan int, 1)
	event.Listen(ch)
	assert.Len(t, ch, 0)
}

func TestChannelEvent_FullListenerDoesNotBlock(t *testing.T) {
	event := NewChannelEvent[int](false)
	slow := make(chan int)
	fast := make(chan int, 3)
	event.Listen(slow)
	event.Listen(fast)

	event.Notify(1)
	event.Notify(2)

	assert.Equal(t, 1, <-fast)
	assert.Equal(t, 2, <-fast)
	assert.Equal(t, uint64(2), event.Dropped())
}

func TestChannelEvent_ListenNilPanics(t *testing.T) {
	assert.Panics(t, func() { NewChannelEvent[int](false).Listen(nil) })
}

func TestCallbackEvent_CallsInRegistrationOrder(t *testing.T) {
	event := NewCallbackEvent[string](false)
	var calls []string
	event.Listen(func(v string) { calls = append(calls, "first:"+v) })
	remove := event.Listen(func(v string) { calls = append(calls, "second:"+v) })
	event.Listen(func(v string) { calls = append(calls, "third:"+v) })

	event.Notify("x")
	remove()
	event.Notify("y")

	assert.Equal(t, []string{"first:x", "second:x", "third:x", "first:y", "third:y"}, calls)
	assert.Equal(t, 2, event.ListenerCount())
}

func TestCallbackEvent_ReplayAndReentrantListen(t *testing.T) {
	event := NewCallbackEvent[int](true)
	event.Notify(3)

	var got []int
	event.Listen(func(v int) {
		got = append(got, v)
		if v == 4 {
			// Registering from inside a callback must not deadlock
			event.Listen(func(int) {})
		}
	})
	event.Notify(4)

	assert.Equal(t, []int{3, 4}, got)
	assert.Equal(t, 2, event.ListenerCount())
}

func TestCallbackEvent_ConcurrentNotify(t *testing.T) {
	event := NewCallbackEvent[int](false)
	var mu sync.Mutex
	sum := 0
	event.Listen(func(v int) {
		mu.Lock()
		sum += v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			event.Notify(v)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1275, sum)
}
