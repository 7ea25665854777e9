package tui

import "github.com/charmbracelet/lipgloss"

// palette groups the styles that change with night mode.
type palette struct {
	verse     lipgloss.Style
	reference lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	status    lipgloss.Style
}

var dayPalette = palette{
	verse:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")),
	reference: lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
	muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
	accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
	status:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6E9E6E")),
}

// nightPalette uses warm, dimmed tones for late reading.
var nightPalette = palette{
	verse:     lipgloss.NewStyle().Foreground(lipgloss.Color("#D8B08C")),
	reference: lipgloss.NewStyle().Foreground(lipgloss.Color("#E0C9A6")).Bold(true),
	muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#8A7560")),
	accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#B5803C")),
	status:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A68A5B")),
}

func paletteFor(night bool) palette {
	if night {
		return nightPalette
	}
	return dayPalette
}
