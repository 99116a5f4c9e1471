package player

import (
	"log"

	"github.com/lowaak/smart-trainer/workout-runner/internal/feedback"
)

// Beeper is implemented by tcell.Screen
type Beeper interface {
	Beep() error
}

// Flasher shows a visual cue
type Flasher interface {
	Flash(token feedback.FlashToken)
}

// TerminalSink plays cues on a terminal: every sound is a bell, flashes go
// to the view and haptics, which a terminal cannot produce, are logged.
type TerminalSink struct {
	beeper  Beeper
	flasher Flasher
	logger  *log.Logger
}

// NewTerminalSink panics on nil dependencies
func NewTerminalSink(beeper Beeper, flasher Flasher, logger *log.Logger) *TerminalSink {
	if beeper == nil {
		panic("TerminalSink: beeper cannot be nil")
	}
	if flasher == nil {
		panic("TerminalSink: flasher cannot be nil")
	}
	if logger == nil {
		panic("TerminalSink: logger cannot be nil")
	}
	return &TerminalSink{beeper: beeper, flasher: flasher, logger: logger}
}

func (s *TerminalSink) PlaySound(sound feedback.SoundID, event feedback.Event) error {
	if event.Kind == feedback.EventCountdownTick {
		s.logger.Printf("Cue: %d...", event.RemainingSec)
	} else {
		s.logger.Printf("Cue: %s (%s)", sound, event.BlockName)
	}
	return s.beeper.Beep()
}

func (s *TerminalSink) Vibrate(pattern feedback.HapticPattern) error {
	s.logger.Printf("Cue: haptic %s", pattern)
	return nil
}

func (s *TerminalSink) Flash(token feedback.FlashToken) error {
	s.flasher.Flash(token)
	return nil
}
