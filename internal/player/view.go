package player

import (
	"github.com/lowaak/smart-trainer/workout-runner/internal/engine"
	"github.com/lowaak/smart-trainer/workout-runner/internal/feedback"
)

// ViewImpl is the toolkit-specific half of the player view
type ViewImpl interface {
	// Initialize builds the widgets
	Initialize(controller *Controller)

	// SetupKeyboardHandlers routes keys to controller
	SetupKeyboardHandlers(controller *Controller)

	// Run blocks until the view exits
	Run() error

	Stop()

	Draw() error

	GetLogViewHeight() int
	ClearLogView()
	WriteLogLine(line string) error

	// UpdateSnapshot redraws the session panel
	UpdateSnapshot(snap engine.Snapshot)

	// ShowFlash highlights the session panel for a cue
	ShowFlash(token feedback.FlashToken)
}
