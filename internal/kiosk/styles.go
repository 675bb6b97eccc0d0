package kiosk

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorText  = lipgloss.Color("#e2e8f0")
	colorMuted = lipgloss.Color("#94a3b8")
	colorPanel = lipgloss.Color("#1e293b")
	colorError = lipgloss.Color("#ef4444")

	placeColors = map[int]lipgloss.Color{
		1: lipgloss.Color("#fbbf24"),
		2: lipgloss.Color("#cbd5e1"),
		3: lipgloss.Color("#d97706"),
	}
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	periodStyle = lipgloss.NewStyle().Foreground(colorMuted)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	valueStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPanel).
			Padding(0, 1)

	dotStyle       = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	activeDotStyle = lipgloss.NewStyle().Foreground(colorPanel).Background(colorText).Padding(0, 1)
)

// value renders a figure, tinted with its band color when it has one.
func value(v, color string) string {
	if color == "" {
		return valueStyle.Render(v)
	}
	return valueStyle.Foreground(lipgloss.Color(color)).Render(v)
}

// podiumStyle gives each place its border color and a height that puts
// first place above the other two.
func podiumStyle(place int) lipgloss.Style {
	height := 5
	switch place {
	case 1:
		height = 7
	case 2:
		height = 6
	}
	return cardStyle.
		BorderForeground(placeColors[place]).
		Width(22).
		Height(height).
		Align(lipgloss.Center, lipgloss.Bottom)
}

// padRight pads s to a visual width, counting wide runes and emoji correctly.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
