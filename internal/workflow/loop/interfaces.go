package loop

import (
	"context"

	"github.com/Cyclone1070/claw/internal/provider"
	"github.com/Cyclone1070/claw/internal/tool"
)

// llmProvider communicates with an LLM.
type llmProvider interface {
	Chat(ctx context.Context, req provider.Request) (*provider.Response, error)
}

// toolManager routes tool calls.
type toolManager interface {
	// Declarations returns all tool schemas for the LLM.
	Declarations() []tool.Declaration

	// Execute runs a tool call and returns its tool message. It never fails:
	// every error is reported in the message content.
	Execute(ctx context.Context, tc provider.ToolCall) provider.Message
}
