package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrConfig, "Bad interval", "Use something like 10s or 1m")

	assert.Equal(t, ErrConfig, err.Code)
	assert.Equal(t, "Bad interval", err.Message)
	assert.Equal(t, "Use something like 10s or 1m", err.Suggestion)
	assert.Nil(t, err.Cause)
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "message only",
			err:      New(ErrSource, "Log file not found", ""),
			contains: []string{"✗ Log file not found"},
		},
		{
			name:     "message and suggestion",
			err:      New(ErrSource, "Log file not found", "Check the path"),
			contains: []string{"✗ Log file not found", "Check the path"},
		},
		{
			name:     "message, cause, and suggestion",
			err:      WrapWithCode(fmt.Errorf("open: no such file"), ErrSource, "Log file not found", "Check the path"),
			contains: []string{"✗ Log file not found", "open: no such file", "Check the path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.err.Error()
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestWrapDefaultsToSourceCode(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(cause, "Couldn't read log")

	assert.Equal(t, ErrSource, err.Code)
	assert.Equal(t, cause, err.Cause)
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := WrapWithCode(cause, ErrState, "State file unreadable", "")

	assert.True(t, errors.Is(err, cause))
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		expected bool
	}{
		{"matching code", New(ErrParse, "bad line", ""), ErrParse, true},
		{"non-matching code", New(ErrParse, "bad line", ""), ErrConfig, false},
		{"nil error", nil, ErrParse, false},
		{"plain error", fmt.Errorf("plain"), ErrParse, false},
		{"wrapped structured error", fmt.Errorf("outer: %w", New(ErrJob, "job failed", "")), ErrJob, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCode(tt.err, tt.code))
		})
	}
}
