package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/workout-runner/internal/timeline"
)

func testTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	tl, err := timeline.New(timeline.Routine{
		ID:   "legs",
		Name: "Leg day",
		Blocks: []timeline.Block{
			{Name: "Squats", Type: timeline.BlockTypeExercise, TargetDurationSec: 30, Sets: 2, RestBetweenSetsSec: 10},
			{Name: "Lunges", Type: timeline.BlockTypeExercise, MeasureMode: timeline.MeasureRepBased, TargetReps: 12, Sets: 1},
		},
	})
	require.NoError(t, err)
	return tl
}

type storeFactory func(t *testing.T) ReadWriter

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"file": func(t *testing.T) ReadWriter {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "sessions"), log.New(&bytes.Buffer{}, "", 0))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) ReadWriter {
			s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "state", "sessions.db"), log.New(&bytes.Buffer{}, "", 0))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStores_Lifecycle(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			defer store.Close()

			tl := testTimeline(t)
			id, err := store.CreateSession(ctx, "legs", tl)
			require.NoError(t, err)
			require.NotEmpty(t, id)

			rec, err := store.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "legs", rec.RoutineID)
			assert.Equal(t, tl.Blocks(), rec.Timeline.Blocks())
			assert.Nil(t, rec.Progress)
			assert.False(t, rec.Finalized())

			pausedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			progress := Progress{
				BlockIndex:      1,
				Set:             1,
				ElapsedSec:      4,
				TotalElapsedSec: 74,
				Phase:           "paused",
				PauseIntervals:  []PauseInterval{{PausedAt: pausedAt}},
				UpdatedAt:       pausedAt,
			}
			require.NoError(t, store.UpdateProgress(ctx, id, progress))

			unfinished, err := store.Unfinished(ctx)
			require.NoError(t, err)
			require.Len(t, unfinished, 1)
			assert.Equal(t, id, unfinished[0].SessionID)

			rec, err = store.Load(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, rec.Progress)
			assert.Equal(t, 74, rec.Progress.TotalElapsedSec)
			require.Len(t, rec.Progress.PauseIntervals, 1)
			assert.True(t, rec.Progress.PauseIntervals[0].PausedAt.Equal(pausedAt))
			assert.Nil(t, rec.Progress.PauseIntervals[0].ResumedAt)

			summary := Summary{
				Phase:           "completed",
				Completed:       true,
				TotalElapsedSec: 110,
				CompletedAt:     pausedAt.Add(5 * time.Minute),
				CompletedBlocks: []BlockRecord{{BlockIndex: 0, Name: "Squats", SetsCompleted: 2}},
			}
			require.NoError(t, store.Finalize(ctx, id, summary))

			rec, err = store.Load(ctx, id)
			require.NoError(t, err)
			require.True(t, rec.Finalized())
			assert.True(t, rec.Summary.Completed)
			assert.Equal(t, "Squats", rec.Summary.CompletedBlocks[0].Name)

			unfinished, err = store.Unfinished(ctx)
			require.NoError(t, err)
			assert.Empty(t, unfinished)
		})
	}
}

func TestStores_UnknownSession(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			defer store.Close()

			_, err := store.Load(ctx, "missing")
			assert.True(t, errors.Is(err, ErrSessionNotFound))

			err = store.UpdateProgress(ctx, "missing", Progress{})
			assert.True(t, errors.Is(err, ErrSessionNotFound))

			err = store.Finalize(ctx, "missing", Summary{})
			assert.True(t, errors.Is(err, ErrSessionNotFound))
		})
	}
}

func TestPauseInterval_Duration(t *testing.T) {
	start := time.Unix(100, 0)
	resumed := start.Add(50 * time.Second)

	assert.Equal(t, 50*time.Second, PauseInterval{PausedAt: start, ResumedAt: &resumed}.Duration(start.Add(time.Hour)))
	assert.Equal(t, 7*time.Second, PauseInterval{PausedAt: start}.Duration(start.Add(7*time.Second)))
}

func TestFileStore_RejectsIDsOutsideDir(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewFileStore(filepath.Join(root, "sessions"), log.New(&bytes.Buffer{}, "", 0))
	require.NoError(t, err)

	outside := Record{SessionID: "x", RoutineID: "legs"}
	raw, err := json.Marshal(outside)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.json"), raw, 0o644))

	for _, id := range []string{"../x", `..\x`, "..", "a/b", ""} {
		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidSessionID, id)
		assert.ErrorIs(t, store.UpdateProgress(ctx, id, Progress{}), ErrInvalidSessionID, id)
		assert.ErrorIs(t, store.Finalize(ctx, id, Summary{}), ErrInvalidSessionID, id)
	}
}
