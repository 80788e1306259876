package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/claw/internal/ui/models"
	"github.com/Cyclone1070/claw/internal/ui/services"
	"github.com/charmbracelet/lipgloss"
)

// RenderModelPopup renders the model selection popup
func RenderModelPopup(s models.State) string {
	if !s.ShowModelList || len(s.ModelList) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Select Model:"))
	lines = append(lines, "")

	for i, model := range s.ModelList {
		if i == s.ModelListIndex {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Render(fmt.Sprintf("▸ %s", model)))
		} else {
			lines = append(lines, fmt.Sprintf("  %s", model))
		}
	}

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Faint(true).Render("↑/↓: Navigate  Enter: Select  Esc: Cancel"))

	return PermissionBoxStyle.Render(strings.Join(lines, "\n"))
}

// RenderApprovalPopup renders a pending approval request.
func RenderApprovalPopup(s models.State) string {
	if s.PendingApproval == nil {
		return ""
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(ColorWarning).Render("Approval required"),
		"",
		strings.TrimRight(services.RenderApproval(*s.PendingApproval), "\n"),
		"",
		lipgloss.NewStyle().Faint(true).Render("y: Allow once  a: Always allow  n/Esc: Deny"),
	}
	return PermissionBoxStyle.Render(strings.Join(lines, "\n"))
}
