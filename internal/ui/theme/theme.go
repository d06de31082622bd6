package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, warm bakery tones
var (
	Primary   = lipgloss.Color("#D97706") // Caramel
	Secondary = lipgloss.Color("#F472B6") // Raspberry
	Accent    = lipgloss.Color("#FBBF24") // Butter
	Success   = lipgloss.Color("#22C55E") // Pistachio
	Error     = lipgloss.Color("#F43F5E") // Cherry
	Text      = lipgloss.Color("#FAF5EF") // Cream
	TextDim   = lipgloss.Color("#A8A29E") // Flour dust
	BgCard    = lipgloss.Color("#292524") // Dark chocolate
	Border    = lipgloss.Color("#57534E") // Cocoa
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Done = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Active = lipgloss.NewStyle().
		Foreground(Accent)

	Locked = lipgloss.NewStyle().
		Foreground(TextDim)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Foreground(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)

	TableHeader = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(0, 1)

	TableCell = lipgloss.NewStyle().
			Foreground(Text).
			Padding(0, 1)
)
