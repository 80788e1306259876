package views

import (
	"github.com/Cyclone1070/claw/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderRoot renders the complete UI layout
func RenderRoot(s models.State) string {
	var popup string
	switch {
	case s.PendingApproval != nil:
		popup = RenderApprovalPopup(s)
	case s.ShowModelList:
		popup = RenderModelPopup(s)
	}
	if popup != "" {
		return lipgloss.Place(
			s.Width,
			s.Height,
			lipgloss.Center,
			lipgloss.Center,
			popup,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderChat(s),
		RenderInput(s),
		RenderStatus(s),
	)
}
