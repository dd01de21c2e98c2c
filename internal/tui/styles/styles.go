package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/superchat/internal/session"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	// AgentColors are assigned to slots in ordinal order.
	AgentColors = []lipgloss.Color{
		"#60A5FA", // Blue
		"#F472B6", // Pink
		"#FBBF24", // Yellow
		"#34D399", // Emerald
		"#FB923C", // Orange
		"#A78BFA", // Purple
	}

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	// Status colors
	StatusPending = lipgloss.Color("#9CA3AF") // Gray
	StatusActive  = lipgloss.Color("#10B981") // Green
	StatusBooted  = lipgloss.Color("#F87171") // Red

	// Header
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor)

	// Footer / status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	// Transcript
	UserLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(SecondaryColor)

	PromotedLabel = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	Question = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	Notice = lipgloss.NewStyle().
		Foreground(MutedColor)

	PhaseBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// Input area
	InputBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	InputPrompt = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	// Summary table
	SummaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1)

	SummaryHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// Error message
	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// Warning message
	WarningMsg = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)
)

// AgentColor returns the color for a slot ordinal. Ordinal 0 is the user.
func AgentColor(ordinal int) lipgloss.Color {
	if ordinal <= 0 {
		return SecondaryColor
	}
	return AgentColors[(ordinal-1)%len(AgentColors)]
}

// AgentLabel returns the bold label style for a slot.
func AgentLabel(ordinal int) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(AgentColor(ordinal))
}

// StatusColor returns the color for a slot status
func StatusColor(status session.Status) lipgloss.Color {
	switch status {
	case session.StatusActive:
		return StatusActive
	case session.StatusBooted:
		return StatusBooted
	default:
		return StatusPending
	}
}

// StatusIcon returns an icon for a slot status
func StatusIcon(status session.Status) string {
	switch status {
	case session.StatusActive:
		return "●"
	case session.StatusBooted:
		return "✗"
	default:
		return "○"
	}
}
