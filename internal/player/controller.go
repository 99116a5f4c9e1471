package player

import (
	"log"

	"github.com/lowaak/smart-trainer/workout-runner/internal/engine"
)

// Runner is the part of the engine the controller drives
type Runner interface {
	BeginActive()
	Pause()
	Resume()
	CompleteSet()
	SkipSet()
	SkipExercise()
	Stop()
	Snapshot() engine.Snapshot
}

// Controller turns key presses into engine commands
type Controller struct {
	model  *Model
	runner Runner
	logger *log.Logger
}

// NewController panics on nil dependencies
func NewController(model *Model, runner Runner, logger *log.Logger) *Controller {
	if model == nil {
		panic("Controller: model cannot be nil")
	}
	if runner == nil {
		panic("Controller: runner cannot be nil")
	}
	if logger == nil {
		panic("Controller: logger cannot be nil")
	}
	return &Controller{model: model, runner: runner, logger: logger}
}

// HandleRune dispatches a key. It returns false for keys it does not use.
func (c *Controller) HandleRune(r rune) bool {
	switch r {
	case ' ':
		c.TogglePause()
	case 'b':
		c.runner.BeginActive()
	case 'c':
		c.runner.CompleteSet()
	case 'n':
		c.runner.SkipSet()
	case 'x':
		c.runner.SkipExercise()
	case 's':
		c.runner.Stop()
	case 'q':
		c.OnEscapeKey()
	default:
		return false
	}
	return true
}

// TogglePause pauses a running session and resumes a paused one. During
// the preparation countdown it starts the first set instead.
func (c *Controller) TogglePause() {
	snap := c.runner.Snapshot()
	switch snap.Phase {
	case engine.PhasePreparing:
		c.runner.BeginActive()
	case engine.PhaseActive:
		c.runner.Pause()
	case engine.PhasePaused:
		c.runner.Resume()
	default:
		c.logger.Printf("Controller: nothing to pause in phase %s", snap.Phase)
	}
}

// OnEscapeKey pauses a running session and asks the view to close. The
// paused checkpoint stays unfinished so the next launch can resume it; use
// 's' to end a session for good.
func (c *Controller) OnEscapeKey() {
	if c.runner.Snapshot().Phase == engine.PhaseActive {
		c.runner.Pause()
	}
	c.model.RequestCloseApplication()
}
