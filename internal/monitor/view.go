package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/wfmon/internal/progress"
	"github.com/rileyhilliard/wfmon/internal/ui"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderProgress())
	b.WriteString("\n")
	b.WriteString(m.renderCounts())
	b.WriteString("\n")
	b.WriteString(m.renderTiming())
	b.WriteString("\n")

	if activity := m.renderActivity(); activity != "" {
		b.WriteString("\n")
		b.WriteString(activity)
		b.WriteString("\n")
	}

	if m.resource != nil {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("engine  ") + m.resource.String())
		b.WriteString("\n")
	}

	if lastErr := m.tracker.LastError(); lastErr != "" {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(warningStyle.Render("waiting on source: " + firstLine(lastErr)))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		b.WriteString(m.renderVerdict())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("q quit | r refresh"))

	return b.String()
}

// renderHeader shows what is being monitored and how fresh the data is.
func (m Model) renderHeader() string {
	title := titleStyle.Render("wfmon " + string(m.tracker.Engine()))
	meta := headerMetaStyle.Render(
		fmt.Sprintf(" | %s | updated %s", m.tracker.SourceDescription(), m.updateText()))
	return title + meta
}

func (m Model) updateText() string {
	if m.lastUpdate.IsZero() {
		return "never"
	}
	secs := int(time.Since(m.lastUpdate).Seconds())
	switch {
	case secs <= 0:
		return "just now"
	case secs == 1:
		return "1s ago"
	default:
		return fmt.Sprintf("%ds ago", secs)
	}
}

// renderProgress renders the completion bar, sized down on narrow terminals.
func (m Model) renderProgress() string {
	cfg := ui.DefaultBarConfig()
	if m.width > 0 && m.width < cfg.Width+10 {
		cfg.Width = m.width - 10
		if cfg.Width < 10 {
			cfg.Width = 10
		}
	}
	bar := ui.RenderBar(m.snap.Percent, cfg)
	return fmt.Sprintf("%s  %d/%d jobs", bar, m.snap.Completed, m.snap.Total)
}

// renderCounts renders the per-state tally line.
func (m Model) renderCounts() string {
	parts := []string{
		successStyle.Render(fmt.Sprintf("%s %d completed", ui.SymbolSuccess, m.snap.Completed)),
		runningStyle.Render(fmt.Sprintf("%s %d running", ui.SymbolProgress, m.snap.Running)),
		pendingStyle.Render(fmt.Sprintf("%s %d pending", ui.SymbolPending, m.snap.Pending)),
	}
	if m.snap.Failed > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%s %d failed", ui.SymbolFail, m.snap.Failed)))
	}
	return strings.Join(parts, "   ")
}

func (m Model) renderTiming() string {
	return labelStyle.Render("elapsed ") + progress.FormatDuration(m.snap.Elapsed) +
		labelStyle.Render("   eta ") + m.snap.ETAString()
}

// renderActivity shows the tail of terminal-state log lines.
func (m Model) renderActivity() string {
	activity := m.tracker.Activity()
	if len(activity) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("recent"))
	for _, line := range activity {
		b.WriteString("\n  ")
		b.WriteString(activityStyle.Render(truncate(line, m.contentWidth()-2)))
	}
	return b.String()
}

func (m Model) renderVerdict() string {
	if m.snap.Failed > 0 {
		return doneFailedStyle.Render(fmt.Sprintf("%s workflow finished: %d of %d jobs failed",
			ui.SymbolFail, m.snap.Failed, m.snap.Total))
	}
	return doneStyle.Render(fmt.Sprintf("%s workflow complete: %d jobs finished",
		ui.SymbolSuccess, m.snap.Completed))
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}
