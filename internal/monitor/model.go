package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/wfmon/internal/progress"
	"github.com/rileyhilliard/wfmon/internal/source"
)

// Model is the Bubble Tea model for the workflow dashboard. All state
// mutation happens through the Tracker; the model only drives the tick
// loop and rendering.
type Model struct {
	tracker  *Tracker
	src      source.Source
	sampler  *ResourceSampler
	interval time.Duration

	width  int
	height int

	snap       progress.Snapshot
	resource   *ResourceSample
	spinner    spinner.Model
	lastUpdate time.Time
	done       bool
	quitting   bool
	fatal      error
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// pollResultMsg carries one poll outcome back into the update loop.
type pollResultMsg struct {
	lines []string
	err   error
	res   *ResourceSample
	time  time.Time
}

// NewModel creates a dashboard model. sampler may be nil when no engine
// process is being watched.
func NewModel(tracker *Tracker, src source.Source, sampler *ResourceSampler, interval time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle
	return Model{
		tracker:  tracker,
		src:      src,
		sampler:  sampler,
		interval: interval,
		snap:     tracker.Snapshot(),
		spinner:  sp,
	}
}

// Init starts the tick timer and triggers an immediate first poll.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), m.tickCmd(), m.spinner.Tick)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.handleKey(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.done || m.quitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if m.done || m.quitting {
			return m, nil
		}
		return m, tea.Batch(m.tickCmd(), m.pollCmd())

	case pollResultMsg:
		snap, done, err := m.tracker.Apply(msg.lines, msg.err, msg.time)
		m.snap = snap
		m.lastUpdate = msg.time
		if msg.res != nil {
			m.resource = msg.res
		}
		if err != nil {
			m.fatal = err
			m.quitting = true
			return m, tea.Quit
		}
		if done {
			// One last frame with the final numbers, then exit.
			m.done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// pollCmd polls the source and samples the engine process off the update
// loop. The poll is bounded by the refresh interval so a hung source
// can't stall the dashboard past one tick.
func (m Model) pollCmd() tea.Cmd {
	src := m.src
	sampler := m.sampler
	interval := m.interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		lines, err := src.Poll(ctx)

		var res *ResourceSample
		if sampler != nil {
			if s, serr := sampler.Sample(); serr == nil {
				res = s
			}
		}

		return pollResultMsg{lines: lines, err: err, res: res, time: time.Now()}
	}
}

// Snapshot returns the last computed aggregate. The CLI reads this from
// the final model to pick the exit code.
func (m Model) Snapshot() progress.Snapshot { return m.snap }

// Err returns the fatal error that stopped the monitor, if any.
func (m Model) Err() error { return m.fatal }

// Done reports whether the workflow finished (as opposed to the user
// quitting early).
func (m Model) Done() bool { return m.done }
