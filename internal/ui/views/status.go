package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/claw/internal/ui/models"
)

// RenderStatus renders the status bar
func RenderStatus(s models.State) string {
	var icon string
	style := StatusDefaultStyle

	switch s.StatusPhase {
	case "thinking":
		dots := strings.Repeat(".", s.DotCount)
		return withModel(StatusThinkingStyle.Render(fmt.Sprintf("%s Generating%s", s.Spinner.View(), dots)), s)
	case "executing":
		icon = s.Spinner.View()
		style = StatusExecutingStyle
	case "done":
		icon = "✔"
		style = StatusDoneStyle
	case "failed", "error":
		icon = "✗"
		style = StatusFailedStyle
	}

	status := "Ready"
	if s.StatusMessage != "" {
		status = strings.TrimSpace(fmt.Sprintf("%s %s", icon, s.StatusMessage))
	} else if s.StatusPhase != "ready" && s.StatusPhase != "" {
		status = icon
	}
	return withModel(style.Render(status), s)
}

func withModel(left string, s models.State) string {
	if s.CurrentModel == "" {
		return left
	}
	return left + "  " + StatusDefaultStyle.Render(s.CurrentModel)
}
