package parse

import (
	"strings"

	"github.com/rileyhilliard/wfmon/internal/progress"
)

// SlurmParser understands scheduler queue listings with pipe-separated
// "JOBID|NAME|STATE" records, the shape produced by
// squeue -h -o "%i|%j|%T" and by sacct -n -P -o JobID,JobName,State.
//
// Batch-step sub-records ("12345.batch") are folded into their parent job.
type SlurmParser struct{}

// NewSlurmParser builds the SLURM state-word grammar.
func NewSlurmParser() *SlurmParser { return &SlurmParser{} }

// Engine returns EngineSlurm.
func (p *SlurmParser) Engine() Engine { return EngineSlurm }

// slurmStates maps SLURM state words to work unit states. Unlisted words
// (REQUEUED, RESIZING, ...) leave the job pending.
var slurmStates = map[string]progress.State{
	"PENDING":       progress.StatePending,
	"CONFIGURING":   progress.StatePending,
	"SUSPENDED":     progress.StatePending,
	"RUNNING":       progress.StateRunning,
	"COMPLETING":    progress.StateRunning,
	"COMPLETED":     progress.StateCompleted,
	"FAILED":        progress.StateFailed,
	"CANCELLED":     progress.StateFailed,
	"TIMEOUT":       progress.StateFailed,
	"NODE_FAIL":     progress.StateFailed,
	"PREEMPTED":     progress.StateFailed,
	"OUT_OF_MEMORY": progress.StateFailed,
	"BOOT_FAIL":     progress.StateFailed,
	"DEADLINE":      progress.StateFailed,
}

// Parse derives the job set from scheduler query output. Unlike the log
// parsers there is no workflow-complete marker; the run is complete once
// every observed job has reached a terminal state. The result is marked
// exhaustive: squeue stops listing a job the moment it exits, so a known
// job missing from the listing has finished.
func (p *SlurmParser) Parse(lines []string) Result {
	res := Result{Exhaustive: true}
	set := newUnitSet()

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) < 3 {
			// Tolerate whitespace-separated squeue output too.
			fields = strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
		}

		jobID := strings.TrimSpace(fields[0])
		name := strings.TrimSpace(fields[1])
		stateWord := normalizeSlurmState(fields[2])

		// Skip header rows and job step sub-records.
		if jobID == "" || strings.EqualFold(jobID, "JOBID") || strings.Contains(jobID, ".") {
			continue
		}

		state, ok := slurmStates[stateWord]
		if !ok {
			state = progress.StatePending
		}
		set.apply(jobID, name, state)
		if state.Terminal() {
			res.Activity = append(res.Activity, line)
		}
	}

	res.Units = set.list()

	// Terminal condition: at least one job seen and none still pending
	// or running.
	if len(res.Units) > 0 {
		res.Complete = true
		for _, u := range res.Units {
			if !u.State.Terminal() {
				res.Complete = false
				break
			}
		}
	}

	return res
}

// normalizeSlurmState trims annotations like "CANCELLED by 1234" down to
// the bare state word.
func normalizeSlurmState(s string) string {
	word := strings.ToUpper(strings.TrimSpace(s))
	if idx := strings.IndexAny(word, " +"); idx > 0 {
		word = word[:idx]
	}
	return word
}
