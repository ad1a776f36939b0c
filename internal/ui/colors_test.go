package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestApplyColorMode(t *testing.T) {
	orig := lipgloss.ColorProfile()
	t.Cleanup(func() { lipgloss.SetColorProfile(orig) })

	style := lipgloss.NewStyle().Foreground(ColorSuccess)

	ApplyColorMode("never")
	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())
	assert.Equal(t, "done", style.Render("done"), "never strips all styling")

	ApplyColorMode("always")
	assert.Equal(t, termenv.ANSI, lipgloss.ColorProfile())
	assert.NotEqual(t, "done", style.Render("done"), "always keeps the color codes")
}
