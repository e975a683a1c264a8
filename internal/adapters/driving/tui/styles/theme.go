// Package styles provides the colour palette and lipgloss styles of the
// chat view.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette. Each colour adapts to light and dark
// terminal backgrounds.
type Theme struct {
	Accent  lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor
	Text    lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Good    lipgloss.AdaptiveColor
	Fair    lipgloss.AdaptiveColor
	Bad     lipgloss.AdaptiveColor
	Frame   lipgloss.AdaptiveColor
	BarBack lipgloss.AdaptiveColor
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"},
		Info:    lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#67E8F9"},
		Text:    lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Muted:   lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Good:    lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"},
		Fair:    lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FDE68A"},
		Bad:     lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
		Frame:   lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
		BarBack: lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"},
	}
}

// Similarity thresholds used by ScoreStyle.
const (
	strongMatch = 0.75
	weakMatch   = 0.4
)

// Styles holds the styles the views render with.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style

	// Answer frames the generated answer with a rule on the left.
	Answer lipgloss.Style

	// ChunkLabel is the "Chunk N" heading of a retrieved chunk.
	ChunkLabel lipgloss.Style

	// Score renders evaluation scores.
	Score lipgloss.Style

	strong lipgloss.Style
	fair   lipgloss.Style
	weak   lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme: theme,

		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Info).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Accent).Bold(true).Underline(true),
		Error:    fg(theme.Bad),
		Success:  fg(theme.Good),
		Help:     fg(theme.Muted).Italic(true),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),

		StatusBar: fg(theme.Muted).
			Background(theme.BarBack).
			Padding(0, 1),

		Answer: fg(theme.Text).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(theme.Accent).
			PaddingLeft(1),

		ChunkLabel: fg(theme.Info).Bold(true),
		Score:      fg(theme.Fair),

		strong: fg(theme.Good),
		fair:   fg(theme.Fair),
		weak:   fg(theme.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ScoreStyle colours a similarity score by how close the match is.
func (s *Styles) ScoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= strongMatch:
		return s.strong
	case score >= weakMatch:
		return s.fair
	default:
		return s.weak
	}
}
