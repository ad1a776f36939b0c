package monitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/wfmon/internal/parse"
	"github.com/rileyhilliard/wfmon/internal/progress"
	"github.com/rileyhilliard/wfmon/internal/source"
)

// RunPlain runs the monitor loop without the dashboard, printing one
// status line per tick. Used when stdout is not a terminal (CI, nohup,
// piped output) or when the user asks for it.
//
// It returns the final snapshot. The error is non-nil only for fatal
// conditions; a cancelled context is a normal early exit after one final
// status line. sampler may be nil.
func RunPlain(ctx context.Context, tracker *Tracker, src source.Source, sampler *ResourceSampler, interval time.Duration, out io.Writer) (progress.Snapshot, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// A final line on cancellation, so interrupted runs still end with
	// the last known numbers.
	finish := func() (progress.Snapshot, error) {
		snap := tracker.Snapshot()
		fmt.Fprintln(out, PlainLine(tracker.Engine(), snap))
		return snap, nil
	}

	waiting := false
	for {
		lines, pollErr := src.Poll(ctx)
		if ctx.Err() != nil {
			return finish()
		}

		snap, done, err := tracker.Apply(lines, pollErr, time.Now())
		if err != nil {
			return snap, err
		}

		if pollErr != nil {
			// Report the outage once, then retry silently until it clears.
			if !waiting {
				fmt.Fprintf(out, "%s %s: waiting on source\n",
					time.Now().Format("15:04:05"), tracker.Engine())
				waiting = true
			}
		} else {
			waiting = false
			line := PlainLine(tracker.Engine(), snap)
			if sampler != nil {
				if res, serr := sampler.Sample(); serr == nil {
					line += " | " + res.String()
				}
			}
			fmt.Fprintln(out, line)
		}

		if done {
			return snap, nil
		}

		select {
		case <-ctx.Done():
			return finish()
		case <-ticker.C:
		}
	}
}

// PlainLine formats one snapshot as a single log-friendly line.
func PlainLine(engine parse.Engine, snap progress.Snapshot) string {
	line := fmt.Sprintf("%s %s: %d/%d (%d%%) | running %d | pending %d",
		time.Now().Format("15:04:05"), engine,
		snap.Completed, snap.Total, snap.Percent, snap.Running, snap.Pending)
	if snap.Failed > 0 {
		line += fmt.Sprintf(" | failed %d", snap.Failed)
	}
	return line + " | eta " + snap.ETAString()
}
