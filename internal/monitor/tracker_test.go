package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/wfmon/internal/errors"
	"github.com/rileyhilliard/wfmon/internal/notify"
	"github.com/rileyhilliard/wfmon/internal/parse"
	"github.com/rileyhilliard/wfmon/internal/state"
)

// recordingSink captures notification events for assertions.
type recordingSink struct {
	events []notify.Event
}

func (s *recordingSink) Notify(ev notify.Event) error {
	s.events = append(s.events, ev)
	return nil
}

func newSlurmTracker(t *testing.T, opts TrackerOptions) *Tracker {
	t.Helper()
	parser, err := parse.ForEngine(parse.EngineSlurm)
	require.NoError(t, err)
	opts.Engine = parse.EngineSlurm
	opts.Parser = parser
	if opts.Source == "" {
		opts.Source = "squeue -u alice"
	}
	return NewTracker(opts)
}

func TestTrackerAppliesParsedLines(t *testing.T) {
	tr := newSlurmTracker(t, TrackerOptions{})

	lines := []string{
		"1|align_a|RUNNING",
		"2|align_b|PENDING",
		"3|align_c|COMPLETED",
		"4|align_d|FAILED",
	}
	snap, done, err := tr.Apply(lines, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 4, snap.Total)
	assert.Equal(t, 1, snap.Running)
	assert.Equal(t, 1, snap.Pending)
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 25, snap.Percent)
}

func TestTrackerDetectsCompletion(t *testing.T) {
	tr := newSlurmTracker(t, TrackerOptions{})

	_, done, err := tr.Apply([]string{"1|a|RUNNING", "2|b|RUNNING"}, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, done)

	snap, done, err := tr.Apply([]string{"1|a|COMPLETED", "2|b|COMPLETED"}, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, tr.Complete())
	assert.Equal(t, 100, snap.Percent)
}

func TestTrackerQueueDrainCountsAsCompleted(t *testing.T) {
	tr := newSlurmTracker(t, TrackerOptions{})

	_, done, err := tr.Apply([]string{"123|align|RUNNING"}, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, done)

	// squeue stops listing the job the moment it exits.
	snap, done, err := tr.Apply(nil, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, 100, snap.Percent)
}

func TestTrackerQueueDrainKeepsObservedFailure(t *testing.T) {
	tr := newSlurmTracker(t, TrackerOptions{})

	_, _, err := tr.Apply([]string{"1|a|FAILED", "2|b|RUNNING"}, nil, time.Now())
	require.NoError(t, err)

	snap, done, err := tr.Apply(nil, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 1, snap.Completed)
}

func TestTrackerNotifiesFailuresOnce(t *testing.T) {
	sink := &recordingSink{}
	tr := newSlurmTracker(t, TrackerOptions{Notifier: notify.NewNotifier(sink)})

	lines := []string{"1|align_a|FAILED", "2|align_b|RUNNING"}
	_, _, err := tr.Apply(lines, nil, time.Now())
	require.NoError(t, err)

	// Same log content again: re-derived transition must not re-fire.
	_, _, err = tr.Apply(lines, nil, time.Now())
	require.NoError(t, err)

	require.Len(t, sink.events, 1)
	assert.Contains(t, sink.events[0].Title, "job failed")
	assert.Equal(t, "align_a", sink.events[0].Message)
	assert.Equal(t, notify.UrgencyCritical, sink.events[0].Urgency)
}

func TestTrackerCompletionNotification(t *testing.T) {
	sink := &recordingSink{}
	tr := newSlurmTracker(t, TrackerOptions{Notifier: notify.NewNotifier(sink)})

	_, done, err := tr.Apply([]string{"1|a|COMPLETED"}, nil, time.Now())
	require.NoError(t, err)
	require.True(t, done)

	require.Len(t, sink.events, 1)
	assert.Contains(t, sink.events[0].Title, "complete")
	assert.Equal(t, notify.UrgencyNormal, sink.events[0].Urgency)
}

func TestTrackerFailedWorkflowNotification(t *testing.T) {
	sink := &recordingSink{}
	tr := newSlurmTracker(t, TrackerOptions{Notifier: notify.NewNotifier(sink)})

	_, done, err := tr.Apply([]string{"1|a|COMPLETED", "2|b|FAILED"}, nil, time.Now())
	require.NoError(t, err)
	require.True(t, done)

	// One per-unit failure alert plus the workflow verdict.
	require.Len(t, sink.events, 2)
	var verdict notify.Event
	for _, ev := range sink.events {
		if ev.Message != "b" {
			verdict = ev
		}
	}
	assert.Contains(t, verdict.Title, "finished with failures")
	assert.Equal(t, notify.UrgencyCritical, verdict.Urgency)
}

func TestTrackerStartupRetryBudget(t *testing.T) {
	tr := newSlurmTracker(t, TrackerOptions{StartupRetries: 3})
	unavailable := errors.New(errors.ErrSource, "Log file not found", "")

	for i := 0; i < 2; i++ {
		_, _, err := tr.Apply(nil, unavailable, time.Now())
		require.NoError(t, err)
		assert.NotEmpty(t, tr.LastError())
	}

	_, _, err := tr.Apply(nil, unavailable, time.Now())
	assert.Error(t, err)
}

func TestTrackerSourceFailureTransientAfterData(t *testing.T) {
	tr := newSlurmTracker(t, TrackerOptions{StartupRetries: 2})
	unavailable := errors.New(errors.ErrSource, "connection dropped", "")

	_, _, err := tr.Apply([]string{"1|a|RUNNING"}, nil, time.Now())
	require.NoError(t, err)

	// Far more failures than the startup budget: still transient.
	for i := 0; i < 10; i++ {
		snap, done, err := tr.Apply(nil, unavailable, time.Now())
		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, 1, snap.Total)
	}
	assert.NotEmpty(t, tr.LastError())

	// Recovery clears the transient error.
	_, _, err = tr.Apply([]string{"1|a|RUNNING"}, nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, tr.LastError())
}

func TestTrackerNonSourceErrorIsFatal(t *testing.T) {
	tr := newSlurmTracker(t, TrackerOptions{})

	_, _, err := tr.Apply(nil, errors.New(errors.ErrParse, "boom", ""), time.Now())
	assert.Error(t, err)
}

func TestTrackerPersistsState(t *testing.T) {
	dir := t.TempDir()
	tr := newSlurmTracker(t, TrackerOptions{StateDir: dir, Source: "squeue -u alice"})

	at := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	_, _, err := tr.Apply([]string{"1|a|COMPLETED", "2|b|RUNNING", "3|c|PENDING"}, nil, at)
	require.NoError(t, err)

	st, err := state.Read(dir, "slurm")
	require.NoError(t, err)
	assert.Equal(t, "squeue -u alice", st.Source)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 1, st.Running)
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, 33, st.Percent)
	assert.Equal(t, at, st.LastUpdate.UTC())

	tr.Cleanup()
	_, err = state.Read(dir, "slurm")
	assert.Error(t, err)
}

func TestTrackerActivityTail(t *testing.T) {
	tr := newSlurmTracker(t, TrackerOptions{})

	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, formatSlurmLine(i))
	}
	_, _, err := tr.Apply(lines, nil, time.Now())
	require.NoError(t, err)

	activity := tr.Activity()
	assert.LessOrEqual(t, len(activity), activityLines)
}

func formatSlurmLine(i int) string {
	return string(rune('1'+i)) + "|job|COMPLETED"
}

func TestTail(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, tail([]string{"a", "b"}, 5))
	assert.Equal(t, []string{"d", "e"}, tail([]string{"a", "b", "c", "d", "e"}, 2))
	assert.Empty(t, tail(nil, 3))
}
