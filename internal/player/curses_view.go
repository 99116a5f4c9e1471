package player

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/smart-trainer/workout-runner/internal/engine"
	"github.com/lowaak/smart-trainer/workout-runner/internal/feedback"
)

const flashDuration = 600 * time.Millisecond

const instructions = "[yellow]Space[white] Pause/Resume  |  [yellow]B[white] Begin  |  [yellow]C[white] Complete Set\n" +
	"[yellow]N[white] Skip Set  |  [yellow]X[white] Skip Exercise  |  [yellow]S[white] Stop  |  [yellow]Esc[white] Quit"

// CursesView implements ViewImpl with tview
type CursesView struct {
	logger *log.Logger
	app    *tview.Application

	logView      *tview.TextView
	sessionPanel *tview.TextView
	mainFlex     *tview.Flex

	flashMu    sync.Mutex
	flashTimer *time.Timer

	// closed once the tview event loop is gone; tview must not be called after
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewCursesView(logger *log.Logger, app *tview.Application) *CursesView {
	if logger == nil {
		panic("CursesView: logger cannot be nil")
	}
	if app == nil {
		panic("CursesView: app cannot be nil")
	}
	return &CursesView{logger: logger, app: app, stopChan: make(chan struct{})}
}

// Initialize sets up the tview widgets
func (ui *CursesView) Initialize(controller *Controller) {
	// No SetChangedFunc with app.Draw(): it can hang once the app is stopped.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	instructionsText := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	instructionsText.SetText(instructions)

	ui.sessionPanel = tview.NewTextView().
		SetDynamicColors(true)
	ui.sessionPanel.SetBorder(true).SetTitle(" Workout ")
	ui.sessionPanel.SetText(formatSnapshot(engine.Snapshot{Phase: engine.PhaseIdle}))

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(instructionsText, 3, 0, false).
		AddItem(ui.sessionPanel, 0, 1, true)

	ui.mainFlex = tview.NewFlex().
		AddItem(left, 0, 1, true).
		AddItem(ui.logView, 0, 1, false)
}

// SetupKeyboardHandlers routes keys to the controller
func (ui *CursesView) SetupKeyboardHandlers(controller *Controller) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}
		if event.Key() == tcell.KeyRune && controller.HandleRune(event.Rune()) {
			return nil
		}
		return event
	})
}

func (ui *CursesView) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

func (ui *CursesView) ClearLogView() {
	ui.logView.Clear()
}

func (ui *CursesView) WriteLogLine(line string) error {
	_, err := fmt.Fprintln(ui.logView, tview.Escape(line))
	return err
}

// UpdateSnapshot redraws the session panel
func (ui *CursesView) UpdateSnapshot(snap engine.Snapshot) {
	ui.sessionPanel.SetText(formatSnapshot(snap))
}

// ShowFlash colors the session panel border for a moment
func (ui *CursesView) ShowFlash(token feedback.FlashToken) {
	if ui.stopped() {
		return
	}
	ui.sessionPanel.SetBorderColor(tcell.GetColor(flashColor(token)))

	ui.flashMu.Lock()
	defer ui.flashMu.Unlock()
	if ui.flashTimer != nil {
		ui.flashTimer.Stop()
	}
	ui.flashTimer = time.AfterFunc(flashDuration, func() {
		if ui.stopped() {
			return
		}
		ui.sessionPanel.SetBorderColor(tview.Styles.BorderColor)
		ui.Draw()
	})
}

// Draw asks tview for a redraw. app.Draw waits for the event loop, so the
// wait is abandoned as soon as the view stops.
func (ui *CursesView) Draw() error {
	if ui.stopped() {
		return nil
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ui.app.Draw()
	}()
	select {
	case <-done:
	case <-ui.stopChan:
	}
	return nil
}

// Run starts the tview application and blocks until it exits
func (ui *CursesView) Run() error {
	defer ui.markStopped()
	return ui.app.SetRoot(ui.mainFlex, true).SetFocus(ui.mainFlex).Run()
}

func (ui *CursesView) Stop() {
	ui.markStopped()
	ui.app.Stop()
}

func (ui *CursesView) markStopped() {
	ui.stopOnce.Do(func() {
		close(ui.stopChan)
		ui.flashMu.Lock()
		if ui.flashTimer != nil {
			ui.flashTimer.Stop()
		}
		ui.flashMu.Unlock()
	})
}

func (ui *CursesView) stopped() bool {
	select {
	case <-ui.stopChan:
		return true
	default:
		return false
	}
}
