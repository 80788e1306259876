package provider

import (
	"context"
	"encoding/json"

	"github.com/Cyclone1070/claw/internal/tool"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// FunctionCall is the name and raw JSON arguments of a requested tool invocation.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolCall is one tool invocation parsed from a model response.
type ToolCall struct {
	ID       string       `json:"id"`
	Function FunctionCall `json:"function"`
}

// Message is one entry of the conversation history.
//
// A tool message carries the originating call in Call so a provider can rebuild
// the call/response pair without a separate assistant entry. Iteration tells
// apart the calls of consecutive model responses, and the first tool message
// of a response keeps any text the model sent with its calls in Preamble.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Call       *ToolCall  `json:"call,omitempty"`
	Iteration  int        `json:"iteration,omitempty"`
	Preamble   string     `json:"preamble,omitempty"`
}

// Request is a single round-trip to the model.
type Request struct {
	Model       string
	Temperature float64
	Messages    []Message
	Tools       []tool.Declaration
}

// Response is either plain text or a list of tool calls.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// HasToolCalls reports whether the model asked for tool execution.
func (r *Response) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// Provider performs chat completions.
type Provider interface {
	Chat(ctx context.Context, req Request) (*Response, error)
}
