package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Progress bar block characters.
const (
	BarFilled = '█'
	BarEmpty  = '░'
)

// DefaultBarWidth is the standard dashboard progress bar width in cells.
const DefaultBarWidth = 50

// ColorFunc returns a color for a given completion percentage.
type ColorFunc func(percent int) lipgloss.Color

// ProgressColor returns colors for completion-style bars where higher is
// better: below 50% blue, 50-79% yellow, 80%+ green.
func ProgressColor(percent int) lipgloss.Color {
	switch {
	case percent >= 80:
		return ColorSuccess
	case percent >= 50:
		return ColorWarning
	default:
		return ColorSecondary
	}
}

// BarConfig configures progress bar rendering.
type BarConfig struct {
	Width       int       // Width of the bar in characters
	Brackets    bool      // Whether to wrap the bar in [ ]
	ColorFunc   ColorFunc // Function to determine bar color; nil disables styling
	ShowPercent bool      // Whether to append the percentage
}

// DefaultBarConfig returns the standard dashboard bar configuration.
func DefaultBarConfig() BarConfig {
	return BarConfig{
		Width:       DefaultBarWidth,
		Brackets:    true,
		ColorFunc:   ProgressColor,
		ShowPercent: true,
	}
}

// ClampPercent clamps a percentage to the 0-100 range.
func ClampPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// BarCounts returns the number of filled and empty cells for a bar.
// Percent should be 0-100; the filled count truncates rather than rounds
// so the bar never overstates progress.
func BarCounts(percent, width int) (filled, empty int) {
	filled = percent * width / 100
	if filled > width {
		filled = width
	}
	empty = width - filled
	return
}

// buildBarString builds the raw bar string from filled/empty counts.
func buildBarString(filled, empty int, brackets bool) string {
	var sb strings.Builder
	capacity := filled + empty
	if brackets {
		capacity += 2
	}
	sb.Grow(capacity)

	if brackets {
		sb.WriteRune('[')
	}
	for i := 0; i < filled; i++ {
		sb.WriteRune(BarFilled)
	}
	for i := 0; i < empty; i++ {
		sb.WriteRune(BarEmpty)
	}
	if brackets {
		sb.WriteRune(']')
	}

	return sb.String()
}

// RenderBar renders a progress bar for the given percentage (0-100).
func RenderBar(percent int, config BarConfig) string {
	if config.Width <= 0 {
		return ""
	}

	percent = ClampPercent(percent)
	filled, empty := BarCounts(percent, config.Width)
	bar := buildBarString(filled, empty, config.Brackets)

	if config.ColorFunc != nil {
		style := lipgloss.NewStyle().Foreground(config.ColorFunc(percent))
		bar = style.Render(bar)
	}

	if config.ShowPercent {
		bar += fmt.Sprintf(" %d%%", percent)
	}

	return bar
}
