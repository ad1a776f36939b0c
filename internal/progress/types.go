package progress

import (
	"fmt"
	"time"
)

// State is the lifecycle state of a work unit.
type State int

const (
	// StatePending means the unit is known but not yet started.
	StatePending State = iota
	// StateRunning means the unit has been submitted or started.
	StateRunning
	// StateCompleted means the unit finished successfully. Terminal.
	StateCompleted
	// StateFailed means the unit finished with an error. Terminal.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state permits no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// WorkUnit is a single schedulable item tracked by a workflow engine or
// job scheduler: a rule instance, a process invocation, a scheduler job.
type WorkUnit struct {
	// ID is unique within a run (rule name + job number, scheduler job id).
	ID string
	// Name is the engine-specific label (rule name, process name).
	Name string
	// State is the current lifecycle state.
	State State
	// StartedAt and FinishedAt are optional; zero when the log carries no
	// usable timestamps.
	StartedAt  time.Time
	FinishedAt time.Time
}

// Snapshot is an immutable aggregate over all known work units at a point
// in time. Invariant: Pending+Running+Completed+Failed == Total.
type Snapshot struct {
	Total     int
	Pending   int
	Running   int
	Completed int
	Failed    int

	// Percent is completed*100/total, truncated, 0 when Total is 0.
	Percent int

	// Elapsed is the whole-second duration since the monitor started.
	Elapsed time.Duration

	// ETA is the estimated time remaining. Valid only when ETAKnown is true
	// (requires at least one completed unit).
	ETA      time.Duration
	ETAKnown bool

	// ComputedAt is when this snapshot was taken.
	ComputedAt time.Time
}

// Done reports whether every known unit has reached a terminal state.
// A snapshot with no units is never done.
func (s Snapshot) Done() bool {
	return s.Total > 0 && s.Completed+s.Failed == s.Total
}

// ETAString formats the ETA, or "unknown" when no completion rate exists yet.
func (s Snapshot) ETAString() string {
	if !s.ETAKnown {
		return "unknown"
	}
	return FormatDuration(s.ETA)
}

// FormatDuration renders a duration as 1h02m03s / 4m05s / 6s.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, sec)
	default:
		return fmt.Sprintf("%ds", sec)
	}
}
