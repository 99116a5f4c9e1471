package engine

import (
	"context"
	"errors"

	"github.com/lowaak/smart-trainer/workout-runner/internal/checkpoint"
	"github.com/lowaak/smart-trainer/workout-runner/internal/feedback"
	"github.com/lowaak/smart-trainer/workout-runner/internal/timeline"
	"github.com/lowaak/smart-trainer/workout-runner/internal/transition"
)

var (
	// ErrSessionActive is returned when a session is started while another
	// one has not reached Completed or Stopped.
	ErrSessionActive = errors.New("a workout session is already running")
	// ErrNoSession is returned by ResumeSession for records that cannot be resumed
	ErrNoSession = errors.New("no resumable session")
	// ErrShutdown is returned once the engine loop has exited
	ErrShutdown = errors.New("engine is shut down")
)

// Phase is the lifecycle phase of a session
type Phase string

const (
	PhaseIdle      Phase = "idle" // no session started yet
	PhasePreparing Phase = "preparing"
	PhaseActive    Phase = "active"
	PhasePaused    Phase = "paused"
	PhaseCompleted Phase = "completed"
	PhaseStopped   Phase = "stopped"
)

// IsTerminal returns true for Completed and Stopped
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseStopped
}

// Default engine timings
const (
	DefaultPreparationSec     = 10
	DefaultNextExerciseSec    = 5
	DefaultCheckpointEverySec = 5
	DefaultRestCueWindowSec   = 3
)

// Settings holds the engine-level constants
type Settings struct {
	// PreparationSec is the countdown before the first set. Zero skips it.
	PreparationSec int
	// NextExerciseSec is the countdown between blocks. Zero skips it.
	NextExerciseSec int
	// CheckpointEverySec is how often progress is saved while a set runs,
	// on top of the save after every pointer change.
	CheckpointEverySec int
	// RestCueWindowSec limits rest countdown cues to the last seconds
	RestCueWindowSec int
	// SecondsPerRep is used to estimate rep-based sets
	SecondsPerRep int
}

// DefaultSettings returns the stock engine timings
func DefaultSettings() Settings {
	return Settings{
		PreparationSec:     DefaultPreparationSec,
		NextExerciseSec:    DefaultNextExerciseSec,
		CheckpointEverySec: DefaultCheckpointEverySec,
		RestCueWindowSec:   DefaultRestCueWindowSec,
		SecondsPerRep:      timeline.DefaultSecondsPerRep,
	}
}

func (s Settings) normalized() Settings {
	if s.PreparationSec < 0 {
		s.PreparationSec = 0
	}
	if s.NextExerciseSec < 0 {
		s.NextExerciseSec = 0
	}
	if s.CheckpointEverySec <= 0 {
		s.CheckpointEverySec = DefaultCheckpointEverySec
	}
	if s.RestCueWindowSec < 0 {
		s.RestCueWindowSec = 0
	}
	if s.SecondsPerRep <= 0 {
		s.SecondsPerRep = timeline.DefaultSecondsPerRep
	}
	return s
}

// TransitionState describes the waiting period in progress, if any
type TransitionState struct {
	Kind         transition.Kind
	RemainingSec int
}

// Pending returns true while a transition is running or paused
func (t TransitionState) Pending() bool {
	return t.Kind != transition.KindNone
}

// ExecutionState is the mutable record of a session. Only the engine loop
// writes it; callers get deep copies.
type ExecutionState struct {
	SessionID         string
	Phase             Phase
	CurrentBlockIndex int
	CurrentSet        int
	ElapsedInSetSec   int
	TotalElapsedSec   int
	PauseIntervals    []checkpoint.PauseInterval
	CompletedBlocks   []checkpoint.BlockRecord
	SkippedBlocks     []checkpoint.BlockRecord
	Transition        TransitionState
}

func (s ExecutionState) clone() ExecutionState {
	out := s
	out.PauseIntervals = clonePauses(s.PauseIntervals)
	out.CompletedBlocks = append([]checkpoint.BlockRecord(nil), s.CompletedBlocks...)
	out.SkippedBlocks = append([]checkpoint.BlockRecord(nil), s.SkippedBlocks...)
	return out
}

func clonePauses(in []checkpoint.PauseInterval) []checkpoint.PauseInterval {
	if in == nil {
		return nil
	}
	out := make([]checkpoint.PauseInterval, len(in))
	for i, p := range in {
		out[i].PausedAt = p.PausedAt
		if p.ResumedAt != nil {
			resumed := *p.ResumedAt
			out[i].ResumedAt = &resumed
		}
	}
	return out
}

// Snapshot is the read-only view handed to the UI
type Snapshot struct {
	SessionID         string
	RoutineName       string
	Phase             Phase
	CurrentBlockIndex int
	CurrentBlock      timeline.Block
	BlockCount        int
	CurrentSet        int
	TotalSets         int // sets of the current block
	ElapsedInSetSec   int
	TotalElapsedSec   int
	ProgressPercent   float64
	Transition        TransitionState
}

// FeedbackDispatcher receives cue events. Dispatch must not block.
type FeedbackDispatcher interface {
	Dispatch(event feedback.Event)
}

// ProgressSink is the engine's write-only view of session persistence.
// UpdateProgress and Finalize are fire-and-forget.
type ProgressSink interface {
	CreateSession(ctx context.Context, routineID string, tl *timeline.Timeline) string
	UpdateProgress(sessionID string, progress checkpoint.Progress)
	Finalize(sessionID string, summary checkpoint.Summary)
}
