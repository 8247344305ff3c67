package ui

import "github.com/charmbracelet/lipgloss"

// This file centralizes the lipgloss styles used across the TUI.

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("63")). // Purple
			Bold(true).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")) // Green

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // Red

	progressingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220")) // Yellow
)

// PhaseStyle returns the style for a workload phase cell.
func PhaseStyle(phase string) lipgloss.Style {
	switch phase {
	case "Ready":
		return readyStyle
	case "Degraded":
		return degradedStyle
	default:
		return progressingStyle
	}
}
