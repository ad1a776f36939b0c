package monitor

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/wfmon/internal/ui"
)

// Dashboard styles built on the shared ANSI palette.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorInfo).
			Bold(true)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	labelStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSuccess)

	runningStyle = lipgloss.NewStyle().
			Foreground(ui.ColorWarning)

	pendingStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSecondary)

	failedStyle = lipgloss.NewStyle().
			Foreground(ui.ColorError)

	activityStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	warningStyle = lipgloss.NewStyle().
			Foreground(ui.ColorWarning)

	doneStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSuccess).
			Bold(true)

	doneFailedStyle = lipgloss.NewStyle().
			Foreground(ui.ColorError).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)
)
