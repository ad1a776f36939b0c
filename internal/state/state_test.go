package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() MonitorState {
	return MonitorState{
		Engine:     "snakemake",
		Source:     "/scratch/run/workflow.log",
		PID:        os.Getpid(),
		Timestamp:  time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
		LastUpdate: time.Date(2026, 8, 25, 9, 5, 0, 0, time.UTC),
		Total:      10,
		Pending:    2,
		Running:    3,
		Completed:  4,
		Failed:     1,
		Percent:    40,
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := testState()

	require.NoError(t, Write(dir, want))

	got, err := Read(dir, "snakemake")
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestWriteFileIsShellSourceable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, testState()))

	data, err := os.ReadFile(Path(dir, "snakemake"))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "total=10\n")
	assert.Contains(t, content, "percent=40\n")
	assert.Contains(t, content, "timestamp=2026-08-25T09:00:00Z\n")
	assert.Contains(t, content, "last_update=2026-08-25T09:05:00Z\n")
	// No spaces around '=' so the file can be sourced as-is.
	assert.NotContains(t, content, " = ")
}

func TestWriteOverwritesPreviousTick(t *testing.T) {
	dir := t.TempDir()
	st := testState()
	require.NoError(t, Write(dir, st))

	st.Completed = 10
	st.Running = 0
	st.Pending = 0
	st.Failed = 0
	st.Percent = 100
	require.NoError(t, Write(dir, st))

	got, err := Read(dir, "snakemake")
	require.NoError(t, err)
	assert.Equal(t, 100, got.Percent)
	assert.Equal(t, 10, got.Completed)
}

func TestWriteRequiresEngine(t *testing.T) {
	err := Write(t.TempDir(), MonitorState{})
	assert.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(t.TempDir(), "nextflow")
	assert.Error(t, err)
}

func TestReadIgnoresUnknownAndMalformedLines(t *testing.T) {
	dir := t.TempDir()
	content := "engine=slurm\npid=123\ngarbage line\nfuture_key=x\ntotal=5\n"
	require.NoError(t, os.WriteFile(Path(dir, "slurm"), []byte(content), 0o644))

	got, err := Read(dir, "slurm")
	require.NoError(t, err)
	assert.Equal(t, "slurm", got.Engine)
	assert.Equal(t, 123, got.PID)
	assert.Equal(t, 5, got.Total)
}

func TestListSortedByEngine(t *testing.T) {
	dir := t.TempDir()

	nf := testState()
	nf.Engine = "nextflow"
	cw := testState()
	cw.Engine = "cromwell"
	require.NoError(t, Write(dir, nf))
	require.NoError(t, Write(dir, cw))

	// Non-state files are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	states, err := List(dir)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "cromwell", states[0].Engine)
	assert.Equal(t, "nextflow", states[1].Engine)
}

func TestListMissingDir(t *testing.T) {
	states, err := List(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, testState()))

	require.NoError(t, Delete(dir, "snakemake"))
	_, err := os.Stat(Path(dir, "snakemake"))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is not an error.
	require.NoError(t, Delete(dir, "snakemake"))
}

func TestAlive(t *testing.T) {
	st := MonitorState{PID: os.Getpid()}
	assert.True(t, st.Alive())

	assert.False(t, (&MonitorState{PID: 0}).Alive())
	// A pid far above pid_max can't be a live process.
	assert.False(t, (&MonitorState{PID: 1 << 30}).Alive())
}

func TestStopRequiresPID(t *testing.T) {
	assert.Error(t, (&MonitorState{Engine: "slurm"}).Stop())
}

func TestDirHonorsEnvOverride(t *testing.T) {
	t.Setenv("WFMON_STATE_DIR", "/tmp/custom-state")
	assert.Equal(t, "/tmp/custom-state", Dir())

	t.Setenv("WFMON_STATE_DIR", "")
	assert.Contains(t, Dir(), filepath.Join(".local", "state", "wfmon"))
}
