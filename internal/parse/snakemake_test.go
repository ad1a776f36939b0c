package parse

import (
	"testing"

	"github.com/rileyhilliard/wfmon/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitByID(t *testing.T, units []progress.WorkUnit, id string) progress.WorkUnit {
	t.Helper()
	for _, u := range units {
		if u.ID == id {
			return u
		}
	}
	t.Fatalf("no unit with id %q", id)
	return progress.WorkUnit{}
}

func TestSnakemakeParseLocalRun(t *testing.T) {
	log := []string{
		"Building DAG of jobs...",
		"rule bwa_map:",
		"    input: data/genome.fa, data/samples/A.fastq",
		"    jobid: 3",
		"Finished job 3.",
		"1 of 5 steps (20%) done",
		"rule samtools_sort:",
		"    jobid: 2",
	}

	res := NewSnakemakeParser().Parse(log)

	require.Len(t, res.Units, 2)
	job3 := unitByID(t, res.Units, "3")
	assert.Equal(t, progress.StateCompleted, job3.State)
	assert.Equal(t, "bwa_map", job3.Name)

	job2 := unitByID(t, res.Units, "2")
	assert.Equal(t, progress.StateRunning, job2.State)
	assert.Equal(t, "samtools_sort", job2.Name)

	assert.False(t, res.Complete)
	assert.Equal(t, []string{"Finished job 3."}, res.Activity)
}

func TestSnakemakeParseClusterSubmission(t *testing.T) {
	log := []string{
		"Submitted job 7 with external jobid 'Submitted batch job 991234'.",
		"Submitted job 8 with external jobid 'Submitted batch job 991235'.",
		"Finished job 7.",
	}

	res := NewSnakemakeParser().Parse(log)

	require.Len(t, res.Units, 2)
	assert.Equal(t, progress.StateCompleted, unitByID(t, res.Units, "7").State)
	assert.Equal(t, progress.StateRunning, unitByID(t, res.Units, "8").State)
}

func TestSnakemakeParseErrorInRule(t *testing.T) {
	log := []string{
		"rule align:",
		"    jobid: 4",
		"Error in rule align:",
		"    jobid: 4",
		"    shell:",
	}

	res := NewSnakemakeParser().Parse(log)

	require.Len(t, res.Units, 1)
	job := unitByID(t, res.Units, "4")
	assert.Equal(t, progress.StateFailed, job.State)
	assert.Equal(t, "align", job.Name)
}

func TestSnakemakeErrorResolvesViaRuleAssociation(t *testing.T) {
	// The error header alone should resolve the failure through the
	// earlier rule block's jobid.
	log := []string{
		"rule align:",
		"    jobid: 9",
		"Error in rule align:",
	}

	res := NewSnakemakeParser().Parse(log)

	require.Len(t, res.Units, 1)
	assert.Equal(t, progress.StateFailed, unitByID(t, res.Units, "9").State)
}

func TestSnakemakeFinishedBeatsLaterNoise(t *testing.T) {
	// A terminal observation latches within a single parse pass.
	log := []string{
		"Finished job 5.",
		"rule cleanup:",
		"    jobid: 5",
	}

	res := NewSnakemakeParser().Parse(log)
	assert.Equal(t, progress.StateCompleted, unitByID(t, res.Units, "5").State)
}

func TestSnakemakeCompletionMarkers(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		complete bool
	}{
		{"all steps done", "5 of 5 steps (100%) done", true},
		{"nothing to be done", "Nothing to be done.", true},
		{"partial progress", "2 of 5 steps (40%) done", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewSnakemakeParser().Parse([]string{tt.line})
			assert.Equal(t, tt.complete, res.Complete)
		})
	}
}

func TestSnakemakeParseIdempotent(t *testing.T) {
	log := []string{
		"rule a:",
		"    jobid: 1",
		"Submitted job 1 with external jobid 'x'.",
		"Finished job 1.",
	}

	p := NewSnakemakeParser()
	first := p.Parse(log)
	second := p.Parse(log)

	assert.Equal(t, first.Units, second.Units)
	assert.Equal(t, first.Activity, second.Activity)
}

func TestSnakemakeIgnoresUnknownLines(t *testing.T) {
	res := NewSnakemakeParser().Parse([]string{
		"Provided cores: 8",
		"Job stats:",
		"some random noise $$%",
		"",
	})
	assert.Empty(t, res.Units)
	assert.False(t, res.Complete)
}
