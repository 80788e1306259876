package agent

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/claw/internal/security"
	"github.com/Cyclone1070/claw/internal/skills"
	"github.com/Cyclone1070/claw/internal/tool"
)

// PromptInput is everything the system prompt is built from.
type PromptInput struct {
	Name      string
	Model     string
	Workspace string
	Autonomy  security.AutonomyLevel
	Skills    []skills.Skill
	Tools     []tool.Declaration
}

// BuildSystemPrompt renders the system prompt: identity, workspace,
// autonomy, skills and the tool instructions.
func BuildSystemPrompt(in PromptInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s, an autonomous assistant that acts on the user's machine through tools.\n", in.Name)
	if in.Model != "" {
		fmt.Fprintf(&sb, "Model: %s\n", in.Model)
	}
	fmt.Fprintf(&sb, "Workspace: %s\n\n", in.Workspace)

	sb.WriteString("## Autonomy\n\n")
	sb.WriteString(autonomySummary(in.Autonomy))
	sb.WriteString("\n\n")

	if section := skills.PromptSection(in.Skills); section != "" {
		sb.WriteString(section)
	}

	sb.WriteString(tool.Instructions(in.Tools))
	sb.WriteString("Call tools with JSON arguments matching their schema. ")
	sb.WriteString("When a tool reports an error or a denial, adapt instead of repeating the same call. ")
	sb.WriteString("When the task is complete, answer in plain text.\n")
	return sb.String()
}

func autonomySummary(level security.AutonomyLevel) string {
	switch level {
	case security.ReadOnly:
		return "Read-only: you may inspect files and run low-risk commands. Changes are refused."
	case security.Full:
		return "Full: commands run without approval. Act carefully; changes are real."
	default:
		return "Supervised: low-risk commands run directly, riskier ones need operator approval, destructive ones may be refused."
	}
}
