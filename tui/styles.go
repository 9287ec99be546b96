package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	status    lipgloss.Style
	timer     lipgloss.Style
	panel     lipgloss.Style
	userLabel lipgloss.Style
	botLabel  lipgloss.Style
	turnText  lipgloss.Style
	completed lipgloss.Style
	current   lipgloss.Style
	pending   lipgloss.Style
	hint      lipgloss.Style
	volumeOn  lipgloss.Style
	volumeOff lipgloss.Style
	errText   lipgloss.Style
	help      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		timer:     lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1),
		userLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117")),
		botLabel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		turnText:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		completed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		current:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		pending:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		hint:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		volumeOn:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		volumeOff: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		errText:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
