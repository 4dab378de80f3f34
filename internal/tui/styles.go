package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/konst007/chgk/internal/tui/colors"
)

// === Layout ===
const (
	MinWidth     = 40
	DefaultWidth = 80
	ProgressPad  = 4
)

// === Styles ===
var (
	// Standard pane border
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Gray).
			Padding(0, 1)

	// Focus style while a fetch is running
	ActivePaneStyle = PaneStyle.
			BorderForeground(colors.Pink)

	ErrorPaneStyle = PaneStyle.
			BorderForeground(colors.StateError)

	LogoStyle = lipgloss.NewStyle().
			Foreground(colors.Purple).
			Bold(true)

	EndpointStyle = lipgloss.NewStyle().
			Foreground(colors.LightGray)

	PaneTitleStyle = lipgloss.NewStyle().
			Foreground(colors.Cyan).
			Bold(true)

	QuestionStyle = lipgloss.NewStyle().
			Foreground(colors.White)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(colors.LightGray).
				Italic(true)

	FailureStyle = lipgloss.NewStyle().
			Foreground(colors.StateError)

	StatusStyle = lipgloss.NewStyle().
			Foreground(colors.Cyan)

	// Stage label colours
	StageIdleStyle     = lipgloss.NewStyle().Foreground(colors.StateIdle)
	StageFetchingStyle = lipgloss.NewStyle().Foreground(colors.StateFetching)
	StageDoneStyle     = lipgloss.NewStyle().Foreground(colors.StateDone)
	StageErrorStyle    = lipgloss.NewStyle().Foreground(colors.StateError)
)
