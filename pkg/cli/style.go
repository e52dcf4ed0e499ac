package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rahul24/CritiqueForTeams/pkg/emotion"
)

// Theme defines the terminal colors.
type Theme struct {
	Primary lipgloss.Color
	Good    lipgloss.Color
	Bad     lipgloss.Color
	Warn    lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultTheme is the default color scheme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00afff"),
	Good:    lipgloss.Color("#00ff9f"),
	Bad:     lipgloss.Color("#ff5f5f"),
	Warn:    lipgloss.Color("#ffaf00"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds the styles derived from a theme.
type Styles struct {
	Title lipgloss.Style
	Key   lipgloss.Style
	Good  lipgloss.Style
	Bad   lipgloss.Style
	Warn  lipgloss.Style
	Dim   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Key:   lipgloss.NewStyle().Foreground(t.Primary),
		Good:  lipgloss.NewStyle().Bold(true).Foreground(t.Good),
		Bad:   lipgloss.NewStyle().Bold(true).Foreground(t.Bad),
		Warn:  lipgloss.NewStyle().Foreground(t.Warn),
		Dim:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Label renders an emotion label, negative in the alert color.
func (s Styles) Label(l emotion.Label) string {
	if l == emotion.Negative {
		return s.Bad.Render(l.String())
	}
	return s.Good.Render(l.String())
}

// KeyValue renders an aligned "key: value" line.
func (s Styles) KeyValue(key, value string, width int) string {
	return s.Key.Width(width).Render(key+":") + " " + value
}
