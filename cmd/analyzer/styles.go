package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-analysis/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for failures.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	bullishStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	bearishStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	neutralStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

// TrendStyle returns the headline style of a trend label.
func TrendStyle(label types.TrendLabel) lipgloss.Style {
	switch {
	case label.IsBullish():
		return bullishStyle
	case label.IsBearish():
		return bearishStyle
	default:
		return neutralStyle
	}
}

// TrendMarker returns a one-character arrow for a trend label.
func TrendMarker(label types.TrendLabel) string {
	switch {
	case label.IsBullish():
		return "▲"
	case label.IsBearish():
		return "▼"
	default:
		return "■"
	}
}
