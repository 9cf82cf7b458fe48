package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// Styles contains lipgloss styles for the dashboard
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Panel     lipgloss.Style
	Focused   lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style

	Idle      lipgloss.Style
	Working   lipgloss.Style
	Completed lipgloss.Style
	Failed    lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1),
		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true),
		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Background(lipgloss.Color("63")).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1),
		User: lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")).
			Bold(true),
		Assistant: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true),
		Idle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Working: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")), // Yellow
		Completed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")), // Green
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}

// PhaseStyle returns the style for a phase status.
func (s Styles) PhaseStyle(status dashboard.Status) lipgloss.Style {
	switch status {
	case dashboard.StatusCompleted:
		return s.Completed
	case dashboard.StatusWorking:
		return s.Working
	default:
		return s.Idle
	}
}

// AgentStyle returns the style for an agent state.
func (s Styles) AgentStyle(state types.AgentState) lipgloss.Style {
	switch state {
	case types.AgentCompleted:
		return s.Completed
	case types.AgentWorking:
		return s.Working
	case types.AgentFailed:
		return s.Failed
	default:
		return s.Idle
	}
}

func phaseIcon(status dashboard.Status, spin string) string {
	switch status {
	case dashboard.StatusCompleted:
		return "✓"
	case dashboard.StatusWorking:
		return spin
	default:
		return "○"
	}
}
