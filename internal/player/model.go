package player

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/smart-trainer/workout-runner/internal/events"
	"github.com/lowaak/smart-trainer/workout-runner/internal/feedback"
	"github.com/lowaak/smart-trainer/workout-runner/internal/go_func_utils"
)

const maxLogLines = 1000

// Model holds the view state that does not come from the engine: the log
// tail, the last flash cue and the close request.
type Model struct {
	logEvent   *events.ChannelEvent[string]
	flashEvent *events.CallbackEvent[feedback.FlashToken]
	closeEvent *events.ChannelEvent[struct{}]

	logLines []string
	logMu    sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *log.Logger
}

// NewModel starts copying lines from logChan into the log tail
func NewModel(logger *log.Logger, logChan <-chan string) *Model {
	if logger == nil {
		panic("Model: logger cannot be nil")
	}
	if logChan == nil {
		panic("Model: logChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		logEvent:   events.NewChannelEvent[string](false),
		flashEvent: events.NewCallbackEvent[feedback.FlashToken](false),
		closeEvent: events.NewChannelEvent[struct{}](true),
		logLines:   make([]string, 0, maxLogLines),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}

	m.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { m.readFromLogChannel(logChan) })

	return m
}

// Shutdown stops the log reader
func (m *Model) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

// ListenToLog registers a channel that is notified of every new log line
func (m *Model) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToFlash registers fn for flash cues. fn runs on the cue worker.
func (m *Model) ListenToFlash(fn func(feedback.FlashToken)) func() {
	return m.flashEvent.Listen(fn)
}

// Flash publishes a flash cue to the view
func (m *Model) Flash(token feedback.FlashToken) {
	m.flashEvent.Notify(token)
}

// ListenToCloseApplication registers a channel for the quit request
func (m *Model) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeEvent.Listen(ch)
}

// RequestCloseApplication asks the view to exit
func (m *Model) RequestCloseApplication() {
	m.closeEvent.Notify(struct{}{})
}

func (m *Model) readFromLogChannel(logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}
			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n log lines
func (m *Model) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	start := len(m.logLines) - n
	if start < 0 {
		start = 0
	}
	result := make([]string, len(m.logLines)-start)
	copy(result, m.logLines[start:])
	return result
}
