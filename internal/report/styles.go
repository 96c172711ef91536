package report

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Color Palette ---
var (
	ColorPrimary = lipgloss.Color("#7D56F4") // Indigo/Purple
	ColorSuccess = lipgloss.Color("#04B575") // Green
	ColorError   = lipgloss.Color("#FF5F87") // Pink/Red
	ColorWarning = lipgloss.Color("#FFAF00") // Gold
	ColorSubtle  = lipgloss.Color("#767676") // Gray
)

// Rendered through the default renderer, so output degrades to plain
// text when stdout is not a terminal.
var (
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	warnStyle    = lipgloss.NewStyle().Foreground(ColorWarning)
	subtleStyle  = lipgloss.NewStyle().Foreground(ColorSubtle)
	titleStyle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
)
