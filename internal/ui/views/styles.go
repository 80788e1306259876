package views

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("39")
	ColorWarning = lipgloss.Color("214")
	ColorDanger  = lipgloss.Color("196")
	ColorSuccess = lipgloss.Color("42")
	ColorMuted   = lipgloss.Color("241")

	UserMessageStyle      = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	AssistantMessageStyle = lipgloss.NewStyle()
	ToolMessageStyle      = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorMessageStyle     = lipgloss.NewStyle().Foreground(ColorDanger)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	PermissionBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorWarning).
				Padding(1, 2)

	StatusDefaultStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusThinkingStyle  = lipgloss.NewStyle().Foreground(ColorPrimary)
	StatusExecutingStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	StatusDoneStyle      = lipgloss.NewStyle().Foreground(ColorSuccess)
	StatusFailedStyle    = lipgloss.NewStyle().Foreground(ColorDanger)
)
