package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color palette using ANSI color codes for terminal compatibility.

// Semantic colors for workflow state indication.
const (
	ColorSuccess lipgloss.Color = "2" // Green: completed units
	ColorError   lipgloss.Color = "1" // Red: failed units
	ColorWarning lipgloss.Color = "3" // Yellow: running units
	ColorInfo    lipgloss.Color = "6" // Cyan: headers, identifiers
)

// Text colors for content hierarchy.
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue: pending units, bar remainder
	ColorMuted     lipgloss.Color = "8" // Gray (bright black): labels, timestamps
)

// HasColor reports whether the current terminal supports color output.
func HasColor() bool {
	return termenv.ColorProfile() != termenv.Ascii
}

// ApplyColorMode sets the render profile from the output.color setting:
// "always" forces ANSI colors, "never" strips all styling, anything else
// detects what the terminal supports.
func ApplyColorMode(mode string) {
	switch mode {
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		if !HasColor() {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}
}
