package transition

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/workout-runner/internal/clock"
	"github.com/lowaak/smart-trainer/workout-runner/internal/clock/clocktest"
)

type recorder struct {
	ticks     []int
	completes int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnTick:     func(sec int) { r.ticks = append(r.ticks, sec) },
		OnComplete: func() { r.completes++ },
	}
}

func newTestScheduler() (*Scheduler, *clocktest.Fake, *bytes.Buffer) {
	fake := clocktest.NewFake(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))
	var buf bytes.Buffer
	return NewScheduler(fake, clock.Direct, log.New(&buf, "", 0)), fake, &buf
}

func TestScheduler_CountdownTicksInOrder(t *testing.T) {
	s, fake, _ := newTestScheduler()
	rec := &recorder{}

	s.Schedule(KindPreparation, 3*time.Second, rec.callbacks())
	kind, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, KindPreparation, kind)

	fake.AdvanceSeconds(2)
	assert.Equal(t, 0, rec.completes)
	assert.Equal(t, time.Second, s.Remaining())

	fake.AdvanceSeconds(1)
	assert.Equal(t, []int{3, 2, 1}, rec.ticks)
	assert.Equal(t, 1, rec.completes)

	_, ok = s.Pending()
	assert.False(t, ok)
}

func TestScheduler_CancelIsIdempotentAndSuppressesComplete(t *testing.T) {
	s, fake, _ := newTestScheduler()
	rec := &recorder{}

	s.Schedule(KindRest, 10*time.Second, rec.callbacks())
	fake.AdvanceSeconds(4)

	assert.True(t, s.Cancel())
	assert.False(t, s.Cancel())
	assert.False(t, s.Cancel())

	fake.AdvanceSeconds(20)
	assert.Equal(t, 0, rec.completes)
	assert.Equal(t, 0, fake.Pending())
}

func TestScheduler_StaleCallbackAfterCancel(t *testing.T) {
	fake := clocktest.NewFake(time.Unix(0, 0))
	var queued []func()
	execute := func(f func()) { queued = append(queued, f) }
	s := NewScheduler(fake, execute, log.New(&bytes.Buffer{}, "", 0))
	rec := &recorder{}

	s.Schedule(KindRest, time.Second, rec.callbacks())
	fake.AdvanceSeconds(1)
	require.Len(t, queued, 1)

	// Completion was already delivered to the executor when cancel won the race
	s.Cancel()
	queued[0]()

	assert.Equal(t, 0, rec.completes)
}

func TestScheduler_SupersedeLogsBug(t *testing.T) {
	s, fake, buf := newTestScheduler()
	first := &recorder{}
	second := &recorder{}

	s.Schedule(KindRest, 5*time.Second, first.callbacks())
	s.Schedule(KindNextExercise, 2*time.Second, second.callbacks())
	fake.AdvanceSeconds(10)

	assert.Equal(t, 0, first.completes)
	assert.Equal(t, 1, second.completes)
	assert.True(t, strings.Contains(buf.String(), "BUG"))
}

func TestScheduler_PauseResumeKeepsRemaining(t *testing.T) {
	s, fake, _ := newTestScheduler()
	rec := &recorder{}

	s.Schedule(KindRest, 10*time.Second, rec.callbacks())
	fake.Advance(3500 * time.Millisecond)

	require.True(t, s.Pause())
	assert.False(t, s.Pause())
	fake.AdvanceSeconds(60)
	assert.Equal(t, 0, rec.completes)
	assert.Equal(t, 6500*time.Millisecond, s.Remaining())

	require.True(t, s.Resume())
	assert.False(t, s.Resume())
	fake.AdvanceSeconds(6)
	assert.Equal(t, 0, rec.completes)
	fake.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, rec.completes)

	// 10,9,8,7 before the pause; 7 again on resume, then down to 1
	assert.Equal(t, []int{10, 9, 8, 7, 7, 6, 5, 4, 3, 2, 1}, rec.ticks)
}

func TestScheduler_ZeroDurationCompletesNow(t *testing.T) {
	s, _, _ := newTestScheduler()
	rec := &recorder{}

	s.Schedule(KindRest, 0, rec.callbacks())

	assert.Equal(t, 1, rec.completes)
	assert.Empty(t, rec.ticks)
	_, ok := s.Pending()
	assert.False(t, ok)
}

func TestScheduler_CompleteCanScheduleNext(t *testing.T) {
	s, fake, _ := newTestScheduler()
	var order []Kind

	s.Schedule(KindRest, time.Second, Callbacks{OnComplete: func() {
		order = append(order, KindRest)
		s.Schedule(KindNextExercise, time.Second, Callbacks{OnComplete: func() {
			order = append(order, KindNextExercise)
		}})
	}})
	fake.AdvanceSeconds(2)

	assert.Equal(t, []Kind{KindRest, KindNextExercise}, order)
}

func TestKind_IsCountdown(t *testing.T) {
	assert.True(t, KindPreparation.IsCountdown())
	assert.True(t, KindNextExercise.IsCountdown())
	assert.False(t, KindRest.IsCountdown())
	assert.False(t, KindNone.IsCountdown())
}
