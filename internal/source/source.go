// Package source abstracts where progress lines come from: a growing log
// file on disk, the same file on a remote cluster node, or the output of a
// scheduler query command.
//
// Sources are polled: every call returns the complete current line set, not
// a delta. Workflow logs are small and engines rewrite or append to them
// unpredictably, so re-reading the whole source each tick is both simpler
// and more robust than tracking byte offsets.
package source

import (
	"context"
	"strings"

	"github.com/rileyhilliard/wfmon/internal/errors"
)

// Source is a pollable origin of raw progress lines.
type Source interface {
	// Describe returns the identifier used in diagnostics and the state
	// file (log path, host:path, or command line).
	Describe() string

	// Poll returns the complete current line set. An unreachable source
	// returns an error with code errors.ErrSource; the monitor reports it
	// once and retries on the next tick.
	Poll(ctx context.Context) ([]string, error)
}

// IsUnavailable reports whether err marks the source as unreachable.
func IsUnavailable(err error) bool {
	return errors.IsCode(err, errors.ErrSource)
}

// splitLines breaks raw source output into lines, dropping the trailing
// empty line a final newline produces.
func splitLines(data string) []string {
	if data == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
