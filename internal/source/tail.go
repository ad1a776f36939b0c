package source

import (
	"context"
	"os"

	"github.com/rileyhilliard/wfmon/internal/errors"
)

// TailSource reads a local log file in full on every poll.
type TailSource struct {
	path string
}

// NewTail creates a source over the given log file path.
func NewTail(path string) *TailSource {
	return &TailSource{path: path}
}

// Describe returns the log file path.
func (s *TailSource) Describe() string { return s.path }

// Poll reads the whole file. A missing or unreadable file is a retryable
// source-unavailable condition: engines often create their log a moment
// after the monitor starts.
func (s *TailSource) Poll(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrSource,
				"Log file not found: "+s.path,
				"Check the path, or wait for the engine to create it.")
		}
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Can't read log file: "+s.path,
			"Check file permissions.")
	}

	return splitLines(string(data)), nil
}
