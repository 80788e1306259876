package agent

import (
	"testing"

	"github.com/Cyclone1070/claw/internal/security"
	"github.com/Cyclone1070/claw/internal/skills"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(PromptInput{
		Name:      "Claw",
		Model:     "gemini-2.5-pro",
		Workspace: "/work",
		Autonomy:  security.ReadOnly,
		Skills:    []skills.Skill{{Name: "deploy", Description: "Ship it", Prompts: []string{"Run make release."}}},
		Tools:     []tool.Declaration{{Name: "file_read", Description: "Read a file"}},
	})

	assert.Contains(t, prompt, "You are Claw,")
	assert.Contains(t, prompt, "Model: gemini-2.5-pro\n")
	assert.Contains(t, prompt, "Workspace: /work\n")
	assert.Contains(t, prompt, "Read-only:")
	assert.Contains(t, prompt, "### deploy\nShip it")
	assert.Contains(t, prompt, "**file_read**: Read a file\nParameters: `{}`")
}

func TestBuildSystemPrompt_NoSkills(t *testing.T) {
	prompt := BuildSystemPrompt(PromptInput{Name: "Claw", Workspace: "/w", Autonomy: security.Full})

	assert.NotContains(t, prompt, "## Skills")
	assert.NotContains(t, prompt, "Model:")
	assert.Contains(t, prompt, "Full: commands run without approval.")
}
