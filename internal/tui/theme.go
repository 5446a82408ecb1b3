package tui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme holds the color scheme for the chat UI.
type Theme struct {
	Accent  color.Color
	User    color.Color
	Bot     color.Color
	Error   color.Color
	Hint    color.Color
	Border  color.Color
	Current color.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Accent:  lipgloss.Color("#5FAFD7"), // light blue
	User:    lipgloss.Color("#00D787"), // green
	Bot:     lipgloss.Color("#D7AF5F"), // sand
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Border:  lipgloss.Color("#3A3A3A"), // dark gray
	Current: lipgloss.Color("#AF87FF"), // violet
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.User).Bold(true)
}

func (t Theme) botStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Bot).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) drawerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
}

func (t Theme) currentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Current).Bold(true)
}
