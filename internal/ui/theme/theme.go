package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette. Muted blues for exam screens, green and red reserved for verdicts.
var (
	Primary   = lipgloss.Color("#3B82F6") // Blue
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Verdicts
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Card frames a question or a result summary.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(1, 2)

// StatusColor picks the header color for a countdown: amber in the last
// minute, rose once time is up.
func StatusColor(remainingSecs int) lipgloss.Style {
	switch {
	case remainingSecs <= 0:
		return lipgloss.NewStyle().Foreground(Error).Bold(true)
	case remainingSecs <= 60:
		return lipgloss.NewStyle().Foreground(Warning).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(Secondary)
}
