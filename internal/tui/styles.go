package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	hoverFg   = lipgloss.Color("#FFA500")
	markerFg  = lipgloss.Color("#F5F5F5")
	borderCol = lipgloss.Color("#243141")

	// canvasBg is what layer colours fade towards.
	canvasBg = "#0B0F14"
	// highlightCol draws pasted geometry.
	highlightCol = "#FF5F87"

	appStyle    = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(baseDimFg)
	hoverStyle  = lipgloss.NewStyle().Foreground(hoverFg).Bold(true)
	markerStyle = lipgloss.NewStyle().Foreground(markerFg).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(baseFg)
)
