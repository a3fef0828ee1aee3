package tui

import "github.com/charmbracelet/lipgloss"

// OLED palette: white on black like the SSD1306 panel.
var (
	ColorPixel  = lipgloss.Color("#E8F4FF")
	ColorPanel  = lipgloss.Color("#000000")
	ColorBorder = lipgloss.Color("#3A7BD5")
	ColorLabel  = lipgloss.Color("#8AA4C8")
	ColorValue  = lipgloss.Color("#FFFFFF")
	ColorError  = lipgloss.Color("#FF3300")
)

var (
	StyleScreen = lipgloss.NewStyle().
			Foreground(ColorPixel).
			Background(ColorPanel).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleStatusLabel = lipgloss.NewStyle().
				Foreground(ColorLabel)

	StyleStatusValue = lipgloss.NewStyle().
				Foreground(ColorValue).
				Bold(true)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorLabel).
			Italic(true)
)
