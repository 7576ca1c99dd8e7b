package ui

import "github.com/charmbracelet/lipgloss"

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	grey      = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	red       = lipgloss.AdaptiveColor{Light: "#D9363E", Dark: "#FF5F87"}

	titleStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Background(darkGreen).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(grey)
	valueStyle = lipgloss.NewStyle().Bold(true)
	goodStyle  = lipgloss.NewStyle().Foreground(darkGreen).Bold(true)
	badStyle   = lipgloss.NewStyle().Foreground(red).Bold(true)
	noteStyle  = lipgloss.NewStyle().Foreground(grey).Italic(true)
)
