package source

import (
	"context"
	"os/exec"
	"strings"

	"github.com/rileyhilliard/wfmon/internal/errors"
)

// CommandSource invokes an external status command (a scheduler query) on
// every poll and captures its stdout.
type CommandSource struct {
	name string
	args []string
}

// NewCommand creates a source that runs the given command per poll.
func NewCommand(name string, args ...string) *CommandSource {
	return &CommandSource{name: name, args: args}
}

// Describe returns the command line.
func (s *CommandSource) Describe() string {
	return strings.Join(append([]string{s.name}, s.args...), " ")
}

// Poll runs the command and returns its stdout split into lines. A non-zero
// exit is treated as "no data yet", not a failure: scheduler queries exit
// non-zero when the queue is empty or accounting is briefly unavailable.
// Only a command that cannot be started at all is a source-unavailable
// condition.
func (s *CommandSource) Poll(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, s.name, s.args...)

	out, err := cmd.Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return splitLines(string(out)), nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Can't run status command: "+s.Describe(),
			"Check that '"+s.name+"' is installed and on your PATH.")
	}

	return splitLines(string(out)), nil
}
