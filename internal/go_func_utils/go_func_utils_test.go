package go_func_utils

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeCall_NoPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	called := false
	ok := SafeCall(logger, "Test", func() { called = true })

	assert.True(t, ok)
	assert.True(t, called)
	assert.Empty(t, buf.String())
}

func TestSafeCall_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	ok := SafeCall(logger, "Feedback", func() { panic("speaker on fire") })

	assert.False(t, ok)
	assert.Contains(t, buf.String(), "Feedback: recovered panic: speaker on fire")
}

func TestSafeGo_RunsFunction(t *testing.T) {
	logger := log.New(&bytes.Buffer{}, "", 0)
	done := make(chan struct{})

	SafeGo(logger, func() { close(done) })

	<-done
}
