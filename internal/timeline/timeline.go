package timeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaVersion is the current routine/timeline document version.
const SchemaVersion = 1

// DefaultSecondsPerRep is used to estimate the duration of rep-based sets
const DefaultSecondsPerRep = 3

// BlockType identifies what a block represents in the routine
type BlockType string

const (
	BlockTypeExercise    BlockType = "exercise"
	BlockTypeRest        BlockType = "rest"
	BlockTypePreparation BlockType = "preparation"
)

// MeasureMode tells whether a set ends on a timer or on a manual completion
type MeasureMode string

const (
	MeasureTimeBased MeasureMode = "time_based"
	MeasureRepBased  MeasureMode = "rep_based"
)

// Block is one exercise, rest or preparation unit of a routine
type Block struct {
	Name               string      `json:"name,omitempty" yaml:"name,omitempty"`
	Type               BlockType   `json:"type" yaml:"type"`
	MeasureMode        MeasureMode `json:"measure_mode,omitempty" yaml:"measure_mode,omitempty"`
	TargetDurationSec  int         `json:"target_duration_sec,omitempty" yaml:"target_duration_sec,omitempty"`
	TargetReps         int         `json:"target_reps,omitempty" yaml:"target_reps,omitempty"`
	Sets               int         `json:"sets" yaml:"sets"`
	RestBetweenSetsSec int         `json:"rest_between_sets_sec,omitempty" yaml:"rest_between_sets_sec,omitempty"`
}

// IsRepBased returns true if sets of this block end only on manual completion
func (b Block) IsRepBased() bool {
	return b.MeasureMode == MeasureRepBased
}

// DisplayName returns the block name, falling back to its type
func (b Block) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return string(b.Type)
}

// SetEstimateSec returns the expected length of one set in seconds
func (b Block) SetEstimateSec(secondsPerRep int) int {
	if b.IsRepBased() {
		return b.TargetReps * secondsPerRep
	}
	return b.TargetDurationSec
}

// EstimatedDurationSec returns the expected length of the whole block,
// including rests between its sets.
func (b Block) EstimatedDurationSec(secondsPerRep int) int {
	return b.SetEstimateSec(secondsPerRep)*b.Sets + b.RestBetweenSetsSec*(b.Sets-1)
}

// Routine is the unvalidated input a timeline is built from
type Routine struct {
	Version int     `json:"version" yaml:"version"`
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Blocks  []Block `json:"blocks" yaml:"blocks"`
}

// Timeline is an immutable, validated view of a routine's blocks.
// Blocks are only reachable through copies.
type Timeline struct {
	name          string
	routineID     string
	blocks        []Block
	secondsPerRep int
}

// Option customises timeline construction
type Option func(*Timeline)

// WithSecondsPerRep overrides the rep duration estimate
func WithSecondsPerRep(sec int) Option {
	return func(t *Timeline) {
		if sec > 0 {
			t.secondsPerRep = sec
		}
	}
}

// New validates the routine and builds a timeline from it.
// Returns *InvalidTimelineError when the routine cannot be executed.
func New(routine Routine, opts ...Option) (*Timeline, error) {
	if err := Validate(routine); err != nil {
		return nil, err
	}

	blocks := make([]Block, len(routine.Blocks))
	copy(blocks, routine.Blocks)
	for i := range blocks {
		// Only exercises can be rep-based; everything else runs on the timer
		if blocks[i].MeasureMode == "" {
			blocks[i].MeasureMode = MeasureTimeBased
		}
	}

	t := &Timeline{
		name:          routine.Name,
		routineID:     routine.ID,
		blocks:        blocks,
		secondsPerRep: DefaultSecondsPerRep,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Name returns the routine name
func (t *Timeline) Name() string { return t.name }

// RoutineID returns the id of the routine this timeline was built from
func (t *Timeline) RoutineID() string { return t.routineID }

// Len returns the number of blocks
func (t *Timeline) Len() int { return len(t.blocks) }

// SecondsPerRep returns the rep duration estimate in use
func (t *Timeline) SecondsPerRep() int { return t.secondsPerRep }

// Block returns a copy of the block at index i
func (t *Timeline) Block(i int) (Block, bool) {
	if i < 0 || i >= len(t.blocks) {
		return Block{}, false
	}
	return t.blocks[i], true
}

// Blocks returns a copy of all blocks
func (t *Timeline) Blocks() []Block {
	out := make([]Block, len(t.blocks))
	copy(out, t.blocks)
	return out
}

// IsLast returns true if i is the index of the final block
func (t *Timeline) IsLast(i int) bool {
	return i == len(t.blocks)-1
}

// TotalSets returns the number of sets across all blocks
func (t *Timeline) TotalSets() int {
	total := 0
	for _, b := range t.blocks {
		total += b.Sets
	}
	return total
}

// SetsBefore returns the number of sets in blocks preceding index i
func (t *Timeline) SetsBefore(i int) int {
	total := 0
	for j := 0; j < i && j < len(t.blocks); j++ {
		total += t.blocks[j].Sets
	}
	return total
}

// EstimatedTotalDurationSec sums the estimated duration of every block
func (t *Timeline) EstimatedTotalDurationSec() int {
	total := 0
	for _, b := range t.blocks {
		total += b.EstimatedDurationSec(t.secondsPerRep)
	}
	return total
}

// Routine converts the timeline back into its document form
func (t *Timeline) Routine() Routine {
	return Routine{
		Version: SchemaVersion,
		ID:      t.routineID,
		Name:    t.name,
		Blocks:  t.Blocks(),
	}
}

type timelineDocument struct {
	Routine
	SecondsPerRep int `json:"seconds_per_rep,omitempty"`
}

// MarshalJSON encodes the timeline as a versioned routine document
func (t *Timeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(timelineDocument{Routine: t.Routine(), SecondsPerRep: t.secondsPerRep})
}

// UnmarshalJSON decodes and re-validates a versioned routine document
func (t *Timeline) UnmarshalJSON(data []byte) error {
	var doc timelineDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding timeline: %w", err)
	}
	if doc.Version != 0 && doc.Version != SchemaVersion {
		return fmt.Errorf("unsupported timeline version %d", doc.Version)
	}
	built, err := New(doc.Routine, WithSecondsPerRep(doc.SecondsPerRep))
	if err != nil {
		return err
	}
	*t = *built
	return nil
}

// InvalidTimelineError is returned when a routine cannot be executed
type InvalidTimelineError struct {
	Problems []string
}

func (e *InvalidTimelineError) Error() string {
	return "invalid timeline: " + strings.Join(e.Problems, "; ")
}

// Validate checks every block of a routine and reports all problems at once
func Validate(routine Routine) error {
	var problems []string
	if routine.Version != 0 && routine.Version != SchemaVersion {
		problems = append(problems, fmt.Sprintf("unsupported version %d", routine.Version))
	}
	if len(routine.Blocks) == 0 {
		problems = append(problems, "routine has no blocks")
	}

	for i, b := range routine.Blocks {
		prefix := fmt.Sprintf("block %d (%s)", i, b.DisplayName())

		switch b.Type {
		case BlockTypeExercise:
		case BlockTypeRest, BlockTypePreparation:
			if b.MeasureMode == MeasureRepBased {
				problems = append(problems, prefix+": only exercise blocks can be rep-based")
			}
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown block type %q", prefix, b.Type))
		}

		switch b.MeasureMode {
		case MeasureRepBased:
			if b.TargetReps <= 0 {
				problems = append(problems, prefix+": target_reps must be positive")
			}
		case MeasureTimeBased, "":
			if b.TargetDurationSec <= 0 {
				problems = append(problems, prefix+": target_duration_sec must be positive")
			}
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown measure mode %q", prefix, b.MeasureMode))
		}

		if b.Sets < 1 {
			problems = append(problems, prefix+": sets must be at least 1")
		}
		if b.RestBetweenSetsSec < 0 {
			problems = append(problems, prefix+": rest_between_sets_sec must not be negative")
		}
	}

	if len(problems) > 0 {
		return &InvalidTimelineError{Problems: problems}
	}
	return nil
}
