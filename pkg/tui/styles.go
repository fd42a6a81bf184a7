package tui

import "github.com/charmbracelet/lipgloss"

// Acid-inspired color scheme (303/acid aesthetic)
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true).
			PaddingLeft(2)

	valueStyle = lipgloss.NewStyle().
			Foreground(acidYellow)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	logStyle = lipgloss.NewStyle().
			Foreground(silverGray)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)

	whiteKeyStyle = lipgloss.NewStyle().
			Foreground(darkGray).
			Background(silverGray)

	whiteKeyOnStyle = lipgloss.NewStyle().
			Foreground(darkGray).
			Background(acidGreen).
			Bold(true)

	blackKeyStyle = lipgloss.NewStyle().
			Foreground(darkGray)

	blackKeyOnStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			Bold(true)
)
