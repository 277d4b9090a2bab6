package tui

import "github.com/charmbracelet/lipgloss"

// Core UI styles
var (
	appStyle = lipgloss.NewStyle().
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7B61FF")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#73F59F"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F56"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFBD2E"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A9"))
)
