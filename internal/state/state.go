// Package state persists per-monitor advisory state files.
//
// Each running monitor owns one key=value file named after its engine,
// overwritten every tick and deleted on exit. The file is advisory only:
// 'wfmon status' and 'wfmon stop' read it to locate and signal a running
// monitor, but a restarted monitor never reads it back. In-flight
// aggregation is lost on a crash; the next run re-derives everything from
// the log anyway.
//
// The format is plain shell-style assignments (timestamp=..., total=...),
// human-readable and safe to source from a script. A single monitor process
// writes each file, so last-write-wins with no locking.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rileyhilliard/wfmon/internal/errors"
)

// MonitorState is the on-disk snapshot of a running monitor.
type MonitorState struct {
	Engine     string    // engine name, doubles as the file key
	Source     string    // log path, host:path, or query command
	PID        int       // pid of the monitor process itself
	Timestamp  time.Time // when the monitor started
	LastUpdate time.Time // when this snapshot was written

	Total     int
	Pending   int
	Running   int
	Completed int
	Failed    int
	Percent   int
}

// Dir returns the state directory, honoring WFMON_STATE_DIR.
// Defaults to ~/.local/state/wfmon.
func Dir() string {
	if dir := os.Getenv("WFMON_STATE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".local", "state", "wfmon")
}

// Path returns the state file path for an engine within dir.
func Path(dir, engine string) string {
	return filepath.Join(dir, engine+".state")
}

// Write persists the state file for st.Engine, creating dir if needed.
// The write goes through a temp file and rename so readers never see a
// partial file.
func Write(dir string, st MonitorState) error {
	if st.Engine == "" {
		return errors.New(errors.ErrState, "State has no engine name", "")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			"Can't create state directory: "+dir,
			"Check directory permissions, or set WFMON_STATE_DIR.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "engine=%s\n", st.Engine)
	fmt.Fprintf(&b, "source=%s\n", st.Source)
	fmt.Fprintf(&b, "pid=%d\n", st.PID)
	fmt.Fprintf(&b, "timestamp=%s\n", st.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "total=%d\n", st.Total)
	fmt.Fprintf(&b, "pending=%d\n", st.Pending)
	fmt.Fprintf(&b, "running=%d\n", st.Running)
	fmt.Fprintf(&b, "completed=%d\n", st.Completed)
	fmt.Fprintf(&b, "failed=%d\n", st.Failed)
	fmt.Fprintf(&b, "percent=%d\n", st.Percent)
	fmt.Fprintf(&b, "last_update=%s\n", st.LastUpdate.Format(time.RFC3339))

	path := Path(dir, st.Engine)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			"Can't write state file: "+tmp, "Check directory permissions.")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			"Can't replace state file: "+path, "Check directory permissions.")
	}
	return nil
}

// Read loads the state file for an engine.
func Read(dir, engine string) (*MonitorState, error) {
	data, err := os.ReadFile(Path(dir, engine))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrState,
				"No state file for "+engine,
				"Is a "+engine+" monitor running?")
		}
		return nil, errors.WrapWithCode(err, errors.ErrState,
			"Can't read state file for "+engine, "Check file permissions.")
	}
	return parse(string(data)), nil
}

// List loads all state files in dir, sorted by engine name.
// A missing directory yields an empty list.
func List(dir string) ([]MonitorState, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrState,
			"Can't read state directory: "+dir, "Check directory permissions.")
	}

	var states []MonitorState
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".state") {
			continue
		}
		engine := strings.TrimSuffix(name, ".state")
		st, err := Read(dir, engine)
		if err != nil {
			continue
		}
		states = append(states, *st)
	}

	sort.Slice(states, func(i, j int) bool { return states[i].Engine < states[j].Engine })
	return states, nil
}

// Delete removes the state file for an engine. Missing files are fine:
// delete is called on every exit path.
func Delete(dir, engine string) error {
	err := os.Remove(Path(dir, engine))
	if err != nil && !os.IsNotExist(err) {
		return errors.WrapWithCode(err, errors.ErrState,
			"Can't remove state file for "+engine, "Check file permissions.")
	}
	return nil
}

// Alive reports whether the monitor process recorded in the state file is
// still running, via a null signal.
func (st *MonitorState) Alive() bool {
	if st.PID <= 0 {
		return false
	}
	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// Stop sends SIGTERM to the monitor process recorded in the state file.
func (st *MonitorState) Stop() error {
	if st.PID <= 0 {
		return errors.New(errors.ErrState,
			"State file for "+st.Engine+" has no pid", "")
	}
	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("Can't find process %d", st.PID), "")
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("Can't signal process %d", st.PID),
			"The monitor may have already exited; try 'wfmon status'.")
	}
	return nil
}

// parse reads key=value lines into a MonitorState. Unknown keys and
// malformed lines are ignored.
func parse(data string) *MonitorState {
	st := &MonitorState{}
	for _, line := range strings.Split(data, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "engine":
			st.Engine = value
		case "source":
			st.Source = value
		case "pid":
			st.PID, _ = strconv.Atoi(value)
		case "timestamp":
			st.Timestamp, _ = time.Parse(time.RFC3339, value)
		case "total":
			st.Total, _ = strconv.Atoi(value)
		case "pending":
			st.Pending, _ = strconv.Atoi(value)
		case "running":
			st.Running, _ = strconv.Atoi(value)
		case "completed":
			st.Completed, _ = strconv.Atoi(value)
		case "failed":
			st.Failed, _ = strconv.Atoi(value)
		case "percent":
			st.Percent, _ = strconv.Atoi(value)
		case "last_update":
			st.LastUpdate, _ = time.Parse(time.RFC3339, value)
		}
	}
	return st
}
