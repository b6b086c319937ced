package diagnostics

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	section    lipgloss.Style
	label      lipgloss.Style
	value      lipgloss.Style
	pair       lipgloss.Style
	tier       lipgloss.Style
	age        lipgloss.Style
	empty      lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		section:    lipgloss.NewStyle().MarginTop(1),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		value:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		pair:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		tier:       lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		age:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		empty:      lipgloss.NewStyle().Faint(true),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
