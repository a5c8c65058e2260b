package main

import "github.com/charmbracelet/lipgloss"

// styles groups the output styles. The plain set is used when stdout is not a terminal.
type styles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	dim   lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{title: plain, ok: plain, err: plain, dim: plain}
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		ok: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90")),
		err: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
		dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
	}
}
