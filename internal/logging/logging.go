package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lowaak/smart-trainer/workout-runner/internal/config"
)

const flags = log.Ldate | log.Ltime | log.Lmicroseconds

// New builds the shared logger. With a log file configured, output goes to
// a rotating lumberjack file; otherwise to stderr. Extra writers (such as
// the player's log panel) receive every line as well.
// The returned close func must be called on exit.
func New(cfg config.LogConfig, extra ...io.Writer) (*log.Logger, func() error) {
	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			log.Printf("Logging: cannot create log dir for %s, using stderr: %v", cfg.File, err)
		} else {
			rotator := &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
			}
			out = rotator
			closeFn = rotator.Close
		}
	}

	writers := append([]io.Writer{out}, extra...)
	if len(writers) > 1 {
		out = io.MultiWriter(writers...)
	}
	return log.New(out, "", flags), closeFn
}

// ChanWriter forwards each written line to a channel without blocking.
// Lines are dropped while the channel is full.
type ChanWriter struct {
	ch chan<- string
}

// NewChanWriter panics on a nil channel
func NewChanWriter(ch chan<- string) *ChanWriter {
	if ch == nil {
		panic("ChanWriter: channel cannot be nil")
	}
	return &ChanWriter{ch: ch}
}

func (w *ChanWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		select {
		case w.ch <- line:
		default:
		}
	}
	return len(p), nil
}
