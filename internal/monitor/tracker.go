// Package monitor drives the poll/parse/render loop for a running workflow.
package monitor

import (
	"fmt"
	"os"
	"time"

	"github.com/rileyhilliard/wfmon/internal/errors"
	"github.com/rileyhilliard/wfmon/internal/logger"
	"github.com/rileyhilliard/wfmon/internal/notify"
	"github.com/rileyhilliard/wfmon/internal/parse"
	"github.com/rileyhilliard/wfmon/internal/progress"
	"github.com/rileyhilliard/wfmon/internal/source"
	"github.com/rileyhilliard/wfmon/internal/state"
)

// DefaultStartupRetries is how many consecutive source failures are
// tolerated before the first successful poll. After the source has
// produced data once, failures are treated as transient indefinitely.
const DefaultStartupRetries = 6

// activityLines is how many recent log lines the dashboard shows.
const activityLines = 5

// Tracker applies poll results to the progress model and handles the
// side effects of each tick: notifications and the state file. It is
// shared by the dashboard and the plain line-per-tick mode.
type Tracker struct {
	engine   parse.Engine
	parser   parse.Parser
	model    *progress.Model
	notifier *notify.Notifier
	stateDir string
	srcDesc  string
	log      logger.Logger

	startupRetries int
	sourceFails    int
	gotData        bool
	complete       bool
	lastErr        string
	activity       []string
}

// TrackerOptions configures a Tracker.
type TrackerOptions struct {
	Engine   parse.Engine
	Parser   parse.Parser
	Source   string // source description for the state file
	Notifier *notify.Notifier // nil disables notifications
	StateDir string           // empty disables the state file

	// StartupRetries overrides DefaultStartupRetries when > 0.
	StartupRetries int
}

// NewTracker creates a tracker for one workflow run.
func NewTracker(opts TrackerOptions) *Tracker {
	retries := opts.StartupRetries
	if retries <= 0 {
		retries = DefaultStartupRetries
	}
	return &Tracker{
		engine:         opts.Engine,
		parser:         opts.Parser,
		model:          progress.NewModel(),
		notifier:       opts.Notifier,
		stateDir:       opts.StateDir,
		srcDesc:        opts.Source,
		log:            logger.NewEnvLogger("[monitor]"),
		startupRetries: retries,
	}
}

// Apply consumes one poll outcome. It returns the current snapshot,
// whether the workflow has finished, and a fatal error when the monitor
// should stop (source never became available, or an unrecoverable poll
// failure).
func (t *Tracker) Apply(lines []string, pollErr error, at time.Time) (progress.Snapshot, bool, error) {
	if pollErr != nil {
		return t.applyError(pollErr)
	}

	t.gotData = true
	t.sourceFails = 0
	t.lastErr = ""

	result := t.parser.Parse(lines)
	t.model.Update(result.Units)
	if result.Exhaustive {
		t.model.SettleAbsent(result.Units)
	}
	snap := t.model.Snapshot()
	t.activity = tail(result.Activity, activityLines)

	if result.Complete || snap.Done() {
		t.complete = true
	}

	t.announce(snap)
	t.persist(snap, at)

	return snap, t.complete, nil
}

func (t *Tracker) applyError(pollErr error) (progress.Snapshot, bool, error) {
	if !source.IsUnavailable(pollErr) {
		return t.model.Snapshot(), t.complete, pollErr
	}

	if !t.gotData {
		t.sourceFails++
		if t.sourceFails >= t.startupRetries {
			return t.model.Snapshot(), false, errors.WrapWithCode(pollErr, errors.ErrSource,
				fmt.Sprintf("Source never became available after %d attempts", t.sourceFails),
				"Check the log path and that the workflow has started.")
		}
	}

	t.lastErr = pollErr.Error()
	t.log.Debug("source unavailable: %v", pollErr)
	return t.model.Snapshot(), t.complete, nil
}

// announce fires per-unit failure alerts and the workflow-finished
// notification. The notifier dedupes, so re-deriving the same
// transitions every tick is harmless.
func (t *Tracker) announce(snap progress.Snapshot) {
	if t.notifier == nil {
		return
	}

	for _, u := range t.model.Units() {
		if u.State == progress.StateFailed {
			t.notifier.Announce(notify.TransitionKey(u.ID, "failed"), notify.Event{
				Title:   fmt.Sprintf("%s job failed", t.engine),
				Message: u.Name,
				Urgency: notify.UrgencyCritical,
			})
		}
	}

	if t.complete {
		if snap.Failed > 0 {
			t.notifier.Announce("workflow:done", notify.Event{
				Title:   fmt.Sprintf("%s workflow finished with failures", t.engine),
				Message: fmt.Sprintf("%d of %d jobs failed", snap.Failed, snap.Total),
				Urgency: notify.UrgencyCritical,
			})
		} else {
			t.notifier.Announce("workflow:done", notify.Event{
				Title:   fmt.Sprintf("%s workflow complete", t.engine),
				Message: fmt.Sprintf("%d jobs finished", snap.Completed),
			})
		}
	}
}

// persist writes the advisory state file. Failures are logged, never fatal.
func (t *Tracker) persist(snap progress.Snapshot, at time.Time) {
	if t.stateDir == "" {
		return
	}
	err := state.Write(t.stateDir, state.MonitorState{
		Engine:     string(t.engine),
		Source:     t.srcDesc,
		PID:        os.Getpid(),
		Timestamp:  t.model.Started(),
		LastUpdate: at,
		Total:      snap.Total,
		Pending:    snap.Pending,
		Running:    snap.Running,
		Completed:  snap.Completed,
		Failed:     snap.Failed,
		Percent:    snap.Percent,
	})
	if err != nil {
		t.log.Warn("state write failed: %v", err)
	}
}

// Cleanup removes the state file. Called on every exit path.
func (t *Tracker) Cleanup() {
	if t.stateDir == "" {
		return
	}
	if err := state.Delete(t.stateDir, string(t.engine)); err != nil {
		t.log.Warn("state cleanup failed: %v", err)
	}
}

// Snapshot returns the current aggregate without applying anything.
func (t *Tracker) Snapshot() progress.Snapshot { return t.model.Snapshot() }

// Activity returns the most recent log lines of interest.
func (t *Tracker) Activity() []string { return t.activity }

// LastError returns the most recent transient error message, if any.
func (t *Tracker) LastError() string { return t.lastErr }

// Complete reports whether the workflow has finished.
func (t *Tracker) Complete() bool { return t.complete }

// Engine returns the engine being monitored.
func (t *Tracker) Engine() parse.Engine { return t.engine }

// SourceDescription returns the human-readable source identity.
func (t *Tracker) SourceDescription() string { return t.srcDesc }

func tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
