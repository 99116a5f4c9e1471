package checkpoint

import (
	"context"
	"errors"
	"time"

	"github.com/lowaak/smart-trainer/workout-runner/internal/timeline"
)

// ErrSessionNotFound is returned by stores for unknown session ids
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidSessionID is returned for ids that cannot name a session file
var ErrInvalidSessionID = errors.New("invalid session id")

// PauseInterval is one pause of a session. ResumedAt is nil only for the
// pause that is currently open.
type PauseInterval struct {
	PausedAt  time.Time  `json:"paused_at"`
	ResumedAt *time.Time `json:"resumed_at,omitempty"`
}

// Duration returns the pause length, measured up to now while still open
func (p PauseInterval) Duration(now time.Time) time.Duration {
	if p.ResumedAt == nil {
		return now.Sub(p.PausedAt)
	}
	return p.ResumedAt.Sub(p.PausedAt)
}

// BlockRecord is an entry of the completed/skipped block logs
type BlockRecord struct {
	BlockIndex    int       `json:"block_index"`
	Name          string    `json:"name"`
	SetsCompleted int       `json:"sets_completed"`
	ElapsedSec    int       `json:"elapsed_sec"`
	At            time.Time `json:"at"`
}

// Progress is the resumable position of a running session
type Progress struct {
	BlockIndex             int             `json:"block_index"`
	Set                    int             `json:"set"`
	ElapsedSec             int             `json:"elapsed_sec"`
	TotalElapsedSec        int             `json:"total_elapsed_sec"`
	Phase                  string          `json:"phase"`
	Transition             string          `json:"transition,omitempty"`
	TransitionRemainingSec int             `json:"transition_remaining_sec,omitempty"`
	PauseIntervals         []PauseInterval `json:"pause_intervals,omitempty"`
	CompletedBlocks        []BlockRecord   `json:"completed_blocks,omitempty"`
	SkippedBlocks          []BlockRecord   `json:"skipped_blocks,omitempty"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// Summary is written once when a session reaches Completed or Stopped
type Summary struct {
	Phase           string        `json:"phase"`
	Completed       bool          `json:"completed"`
	TotalElapsedSec int           `json:"total_elapsed_sec"`
	CompletedAt     time.Time     `json:"completed_at"`
	CompletedBlocks []BlockRecord `json:"completed_blocks,omitempty"`
	SkippedBlocks   []BlockRecord `json:"skipped_blocks,omitempty"`
}

// Record is everything a store knows about one session
type Record struct {
	SessionID string             `json:"session_id"`
	RoutineID string             `json:"routine_id"`
	Timeline  *timeline.Timeline `json:"timeline"`
	CreatedAt time.Time          `json:"created_at"`
	Progress  *Progress          `json:"progress,omitempty"`
	Summary   *Summary           `json:"summary,omitempty"`
}

// Finalized returns true once a summary has been written
func (r Record) Finalized() bool {
	return r.Summary != nil
}

// Store is the write side of session persistence used by the engine
type Store interface {
	CreateSession(ctx context.Context, routineID string, tl *timeline.Timeline) (string, error)
	UpdateProgress(ctx context.Context, sessionID string, progress Progress) error
	Finalize(ctx context.Context, sessionID string, summary Summary) error
}

// Reader is the read side, used only for a cold resume
type Reader interface {
	Load(ctx context.Context, sessionID string) (*Record, error)
	Unfinished(ctx context.Context) ([]Record, error)
}

// ReadWriter is implemented by the concrete stores
type ReadWriter interface {
	Store
	Reader
	Close() error
}
