package checkpoint

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/workout-runner/internal/timeline"
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

type flakyStore struct {
	mu         sync.Mutex
	createErr  error
	failFirst  int // number of write calls to fail before succeeding
	calls      int
	progresses []Progress
	summaries  []Summary
	panicWrite bool
}

func (s *flakyStore) CreateSession(ctx context.Context, routineID string, tl *timeline.Timeline) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	return "store-id", nil
}

func (s *flakyStore) UpdateProgress(ctx context.Context, sessionID string, p Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicWrite {
		panic("disk gone")
	}
	s.calls++
	if s.calls <= s.failFirst {
		return errors.New("disk busy")
	}
	s.progresses = append(s.progresses, p)
	return nil
}

func (s *flakyStore) Finalize(ctx context.Context, sessionID string, summary Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
	return nil
}

func TestWriter_CreateSessionFallsBackToLocalID(t *testing.T) {
	logs := &syncBuffer{}
	w := NewWriter(&flakyStore{createErr: errors.New("read-only fs")}, log.New(logs, "", 0), WriterOptions{})
	defer w.Close()

	id := w.CreateSession(context.Background(), "legs", nil)

	assert.NotEmpty(t, id)
	assert.NotEqual(t, "store-id", id)
	assert.Contains(t, logs.String(), "read-only fs")
}

func TestWriter_CreateSessionUsesStoreID(t *testing.T) {
	w := NewWriter(&flakyStore{}, log.New(&syncBuffer{}, "", 0), WriterOptions{})
	defer w.Close()

	assert.Equal(t, "store-id", w.CreateSession(context.Background(), "legs", nil))
}

func TestWriter_AppliesInOrderAndRetries(t *testing.T) {
	store := &flakyStore{failFirst: 1}
	logs := &syncBuffer{}
	w := NewWriter(store, log.New(logs, "", 0), WriterOptions{RetryDelay: time.Millisecond})

	w.UpdateProgress("s1", Progress{Set: 1})
	w.UpdateProgress("s1", Progress{Set: 2})
	w.Finalize("s1", Summary{Phase: "stopped"})
	w.Close()

	require.Len(t, store.progresses, 2)
	assert.Equal(t, 1, store.progresses[0].Set)
	assert.Equal(t, 2, store.progresses[1].Set)
	require.Len(t, store.summaries, 1)
	assert.Contains(t, logs.String(), "disk busy")
}

func TestWriter_GivesUpWithoutPanicking(t *testing.T) {
	store := &flakyStore{panicWrite: true}
	logs := &syncBuffer{}
	w := NewWriter(store, log.New(logs, "", 0), WriterOptions{Retries: -1})

	w.UpdateProgress("s1", Progress{Set: 1})
	w.Finalize("s1", Summary{Phase: "completed"})
	w.Close()

	assert.Contains(t, logs.String(), "giving up on progress write")
	assert.Len(t, store.summaries, 1, "later writes still go through")
}

func TestWriter_WritesAfterCloseAreDropped(t *testing.T) {
	store := &flakyStore{}
	logs := &syncBuffer{}
	w := NewWriter(store, log.New(logs, "", 0), WriterOptions{})
	w.Close()
	w.Close()

	w.UpdateProgress("s1", Progress{})
	assert.Empty(t, store.progresses)
	assert.Contains(t, logs.String(), "closed, dropping")
}

func TestWriter_CopiesPauseIntervals(t *testing.T) {
	store := &flakyStore{}
	w := NewWriter(store, log.New(&syncBuffer{}, "", 0), WriterOptions{})

	intervals := []PauseInterval{{PausedAt: time.Unix(1, 0)}}
	w.UpdateProgress("s1", Progress{PauseIntervals: intervals})
	intervals[0].PausedAt = time.Unix(999, 0)
	w.Close()

	require.Len(t, store.progresses, 1)
	assert.Equal(t, time.Unix(1, 0), store.progresses[0].PauseIntervals[0].PausedAt)
}
