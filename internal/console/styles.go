package console

import "github.com/charmbracelet/lipgloss"

// Semantic colors shared by every themeable element.
var (
	colorSuccess = lipgloss.Color("#8BC34A") // lime green
	colorError   = lipgloss.Color("#e53935") // red
	colorWarning = lipgloss.Color("#FFC107") // yellow
	colorInfo    = lipgloss.Color("#2196F3") // blue
	colorMuted   = lipgloss.Color("#757575") // gray
)

// Styles holds the styled components of the run output.
type Styles struct {
	Title   lipgloss.Style
	Rule    lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style

	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Skip    lipgloss.Style
	Timeout lipgloss.Style
}

// DefaultStyles builds the standard style set.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Rule:    lipgloss.NewStyle().Foreground(colorMuted),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
		Info:    lipgloss.NewStyle().Foreground(colorInfo),
		Error:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Success: lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),

		Pass:    lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
		Fail:    lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Skip:    lipgloss.NewStyle().Foreground(colorWarning).Bold(true),
		Timeout: lipgloss.NewStyle().Foreground(colorError).Bold(true),
	}
}

func (s Styles) forVerdict(label string) lipgloss.Style {
	switch label {
	case "PASS":
		return s.Pass
	case "SKIP":
		return s.Skip
	case "TIMEOUT":
		return s.Timeout
	default:
		return s.Fail
	}
}
