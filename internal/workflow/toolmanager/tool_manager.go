package toolmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/claw/internal/provider"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/Cyclone1070/claw/internal/workflow"
)

// ToolManager routes tool calls to registered tools by name.
// Registration order is kept for declarations and prompts.
type ToolManager struct {
	order    []string
	registry map[string]tool.Tool
	observer workflow.Observer
	now      func() time.Time
}

func NewToolManager(observer workflow.Observer, tools ...tool.Tool) *ToolManager {
	tm := &ToolManager{
		registry: make(map[string]tool.Tool),
		observer: observer,
		now:      time.Now,
	}
	for _, t := range tools {
		tm.Register(t)
	}
	return tm
}

// Register adds t, replacing any tool with the same name in place.
func (m *ToolManager) Register(t tool.Tool) {
	name := t.Name()
	if _, exists := m.registry[name]; !exists {
		m.order = append(m.order, name)
	}
	m.registry[name] = t
}

// Names returns the registered tool names in registration order.
func (m *ToolManager) Names() []string {
	return append([]string(nil), m.order...)
}

func (m *ToolManager) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(m.order))
	for _, name := range m.order {
		decls = append(decls, tool.DeclarationOf(m.registry[name]))
	}
	return decls
}

// Execute runs one tool call and returns the tool message for the history.
// Unknown tools, malformed arguments and panics become failed results.
func (m *ToolManager) Execute(ctx context.Context, tc provider.ToolCall) provider.Message {
	workflow.Notify(m.observer, workflow.ToolStartEvent{
		CallID:   tc.ID,
		ToolName: tc.Function.Name,
		Args:     string(tc.Function.Arguments),
	})

	start := m.now()
	res := m.run(ctx, tc)
	workflow.Notify(m.observer, workflow.ToolInvokedEvent{
		CallID:   tc.ID,
		Name:     tc.Function.Name,
		Duration: m.now().Sub(start),
		Success:  res.Success,
		Error:    res.Error,
		Output:   res.Output,
	})

	call := tc
	return provider.Message{
		Role:       provider.RoleTool,
		ToolCallID: tc.ID,
		Content:    res.Content(),
		Call:       &call,
	}
}

func (m *ToolManager) run(ctx context.Context, tc provider.ToolCall) (res tool.Result) {
	t, ok := m.registry[tc.Function.Name]
	if !ok {
		return tool.Failf("tool %q does not exist. Available tools: %s", tc.Function.Name, strings.Join(m.order, ", "))
	}

	args, err := decodeArguments(tc.Function.Arguments)
	if err != nil {
		return tool.Failf("invalid arguments for tool %q: %v", tc.Function.Name, err)
	}
	if err := t.Parameters().Validate(args); err != nil {
		return tool.Fail(err)
	}
	if err := ctx.Err(); err != nil {
		return tool.Failf("cancelled before %s ran: %v", tc.Function.Name, err)
	}

	defer func() {
		if r := recover(); r != nil {
			res = tool.Failf("tool %q panicked: %v", tc.Function.Name, r)
		}
	}()
	return t.Execute(ctx, args)
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
