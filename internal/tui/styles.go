package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	handleFg  = lipgloss.Color("#FFA500")
	activeFg  = lipgloss.Color("#F43F5E")
	borderCol = lipgloss.Color("#243141")

	appStyle      = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(baseDimFg)
	modeStyle     = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(accentFg)
	handleStyle   = lipgloss.NewStyle().Foreground(handleFg)
	activeStyle   = lipgloss.NewStyle().Foreground(activeFg).Bold(true)
	hoverStyle    = lipgloss.NewStyle().Foreground(handleFg).Bold(true)
)
