package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	spotifyGreen = "#1DB954"
	barWidth     = 30
)

var styles = newTheme()

// theme holds the player's styles. Colors adapt to light and dark terminals.
type theme struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	barFill  lipgloss.Style
	barEmpty lipgloss.Style
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func newTheme() theme {
	fg := func(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return theme{
		title:    fg(lipgloss.Color(spotifyGreen)).Bold(true).MarginBottom(1),
		ok:       fg(adaptive("#168D40", spotifyGreen)).Bold(true),
		err:      fg(adaptive("#C8102E", "#FF5F5F")).Bold(true),
		warn:     fg(adaptive("#B36200", "#FFA500")),
		help:     fg(adaptive("#767676", "#626262")).Italic(true),
		barFill:  fg(lipgloss.Color(spotifyGreen)),
		barEmpty: fg(adaptive("#D0D0D0", "#3A3A3A")),
	}
}

// progressBar renders position/duration as a fixed-width bar. A zero duration renders an empty bar.
func progressBar(positionMS, durationMS, width int) string {
	filled := 0
	if durationMS > 0 {
		filled = min(width, max(0, positionMS*width/durationMS))
	}
	return styles.barFill.Render(strings.Repeat("━", filled)) + styles.barEmpty.Render(strings.Repeat("─", width-filled))
}
