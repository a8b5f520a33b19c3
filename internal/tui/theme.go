// Package tui is the bubbletea live dashboard for a running hub: an
// agent table and a scrolling observer-event log, styled with the
// palette and layout conventions carried over from the runtime's own
// TUI theme.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSecondary = lipgloss.Color("#6366F1")
	ColorAccent    = lipgloss.Color("#F59E0B")

	ColorRunning = lipgloss.Color("#10B981")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorError   = lipgloss.Color("#EF4444")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorText    = lipgloss.Color("#E5E7EB")
	ColorSubtle  = lipgloss.Color("#9CA3AF")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	Description = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	Selected = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	Dimmed = lipgloss.NewStyle().
		Foreground(ColorMuted)

	Running = lipgloss.NewStyle().
		Foreground(ColorRunning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	Help = lipgloss.NewStyle().
		Foreground(ColorMuted)
)

// StatusStyle colors an agent.Status's string form.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "start":
		return Running
	case "init":
		return Dimmed
	default:
		return lipgloss.NewStyle().Foreground(ColorText)
	}
}

// EventKindStyle colors an observer.Event's Kind for the event log.
func EventKindStyle(kind string) lipgloss.Style {
	switch kind {
	case "agent_error":
		return ErrorStyle
	case "agent_config_updated", "agent_spec_updated":
		return lipgloss.NewStyle().Foreground(ColorAccent)
	case "board":
		return lipgloss.NewStyle().Foreground(ColorSecondary)
	default:
		return lipgloss.NewStyle().Foreground(ColorText)
	}
}
