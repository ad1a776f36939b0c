package monitor

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/rileyhilliard/wfmon/internal/errors"
)

// ResourceSample is one observation of the engine process's footprint.
type ResourceSample struct {
	PID      int32
	CPU      float64 // percent since the previous sample
	MemoryMB float64 // resident set size
}

// ResourceSampler tracks one process across polls. CPU percent is measured
// between consecutive Sample calls, so the first reading is usually zero.
type ResourceSampler struct {
	proc *process.Process
}

// NewResourceSampler attaches to the given pid.
func NewResourceSampler(pid int32) (*ResourceSampler, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrJob,
			fmt.Sprintf("No process with pid %d", pid),
			"Check the pid with: ps -p "+fmt.Sprint(pid))
	}
	return &ResourceSampler{proc: proc}, nil
}

// FindEngineProcess locates a running process whose name or command line
// contains the given engine name, returning its pid. When several match,
// the lowest pid wins, which is usually the parent driver process.
func FindEngineProcess(name string) (int32, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrJob,
			"Can't list processes", "")
	}

	needle := strings.ToLower(name)
	best := int32(0)
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil {
			continue
		}
		match := strings.Contains(strings.ToLower(pname), needle)
		if !match {
			if cmdline, err := p.Cmdline(); err == nil {
				match = strings.Contains(strings.ToLower(cmdline), needle)
			}
		}
		if match && (best == 0 || p.Pid < best) {
			best = p.Pid
		}
	}

	if best == 0 {
		return 0, errors.New(errors.ErrJob,
			"No running process matches '"+name+"'",
			"Start the workflow first, or pass an explicit pid with --pid.")
	}
	return best, nil
}

// Sample reads the process's current CPU and memory usage. An error here
// usually means the process exited; callers treat that as "no resource
// pane", not a monitor failure.
func (s *ResourceSampler) Sample() (*ResourceSample, error) {
	cpu, err := s.proc.CPUPercent()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrJob,
			fmt.Sprintf("Can't sample process %d", s.proc.Pid), "")
	}

	sample := &ResourceSample{PID: s.proc.Pid, CPU: cpu}
	if mem, err := s.proc.MemoryInfo(); err == nil && mem != nil {
		sample.MemoryMB = float64(mem.RSS) / (1024 * 1024)
	}
	return sample, nil
}

// String renders the sample for the dashboard's resource pane.
func (s *ResourceSample) String() string {
	return fmt.Sprintf("pid %d | cpu %.1f%% | mem %.0f MB", s.PID, s.CPU, s.MemoryMB)
}
