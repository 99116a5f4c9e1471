package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/workout-runner/internal/config"
)

func TestNew_WritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "player.log")
	logger, closeFn := New(config.LogConfig{File: path, MaxSizeMB: 1, MaxBackups: 1})

	logger.Println("Engine: hello")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Engine: hello")
}

func TestNew_CopiesToExtraWriters(t *testing.T) {
	var panel bytes.Buffer
	path := filepath.Join(t.TempDir(), "player.log")
	logger, closeFn := New(config.LogConfig{File: path}, &panel)
	defer closeFn()

	logger.Println("Scheduler: rest 10s")
	assert.Contains(t, panel.String(), "Scheduler: rest 10s")
}

func TestChanWriter_SplitsLinesAndDropsWhenFull(t *testing.T) {
	ch := make(chan string, 2)
	w := NewChanWriter(ch)

	n, err := w.Write([]byte("one\ntwo\nthree\n"))
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	assert.Equal(t, "one", <-ch)
	assert.Equal(t, "two", <-ch)
	assert.Empty(t, ch)
}

func TestNewChanWriter_NilPanics(t *testing.T) {
	assert.Panics(t, func() { NewChanWriter(nil) })
}
