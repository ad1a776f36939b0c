package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferLoggerCapturesMessages(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %d", 1)
	l.Info("info %s", "msg")
	l.Warn("warn")
	l.Error("error")

	assert.Len(t, l.Messages, 4)
	assert.Equal(t, "debug 1", l.Messages[0].Message)
	assert.Equal(t, "info msg", l.Messages[1].Message)
	assert.True(t, l.HasLevel("warn"))
	assert.True(t, l.HasLevel("error"))
	assert.False(t, l.HasLevel("fatal"))
}

func TestBufferLoggerClear(t *testing.T) {
	l := NewBufferLogger()
	l.Info("something")
	assert.NotEmpty(t, l.Messages)

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestNoopLoggerDiscards(t *testing.T) {
	// Must not panic; discards everything.
	l := Noop()
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}

func TestSetDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	buf := NewBufferLogger()
	SetDefault(buf)

	Default().Info("routed")
	assert.True(t, buf.HasLevel("info"))
}
