package styles

import (
	hc05 "github.com/allbin/go-hc05"
	"github.com/allbin/go-hc05/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Step/status styles
	StatusOKStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)

	StatusFailedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	StatusWorkingStyle = lipgloss.NewStyle().
				Foreground(colors.Yellow).
				Bold(true)

	StatusSkippedStyle = lipgloss.NewStyle().
				Foreground(colors.Peach)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Input styles
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	// List selection styles
	SelectedStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Mauve).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)

	// Error styles
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	// Info styles
	InfoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve)
)

// OutcomeStyle maps a retry-policy outcome onto its display style.
func OutcomeStyle(outcome hc05.Outcome) lipgloss.Style {
	switch outcome {
	case hc05.OutcomeSuccess:
		return StatusOKStyle
	case hc05.OutcomeSkipped:
		return StatusSkippedStyle
	default:
		return StatusFailedStyle
	}
}

// SessionStateStyle maps a session lifecycle state onto its display style.
func SessionStateStyle(state hc05.SessionState) lipgloss.Style {
	switch state {
	case hc05.StateATConfirmed:
		return StatusOKStyle
	case hc05.StateFaulted:
		return StatusFailedStyle
	case hc05.StateChannelOpen:
		return StatusWorkingStyle
	default:
		return DimStyle
	}
}
