package toolmanager

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Cyclone1070/claw/internal/provider"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/Cyclone1070/claw/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTool struct {
	name        string
	schema      *tool.Schema
	executeFunc func(ctx context.Context, args map[string]any) tool.Result
}

func (m *mockTool) Name() string        { return m.name }
func (m *mockTool) Description() string { return "mock " + m.name }
func (m *mockTool) Parameters() *tool.Schema {
	if m.schema == nil {
		return &tool.Schema{Type: tool.TypeObject}
	}
	return m.schema
}

func (m *mockTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, args)
	}
	return tool.OK("ok")
}

type eventLog struct {
	mu     sync.Mutex
	events []workflow.Event
}

func (l *eventLog) Observe(ev workflow.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func call(id, name, args string) provider.ToolCall {
	return provider.ToolCall{ID: id, Function: provider.FunctionCall{Name: name, Arguments: json.RawMessage(args)}}
}

func TestDeclarations_RegistrationOrder(t *testing.T) {
	tm := NewToolManager(nil, &mockTool{name: "shell"}, &mockTool{name: "file_read"}, &mockTool{name: "memory_store"})
	tm.Register(&mockTool{name: "shell"})

	decls := tm.Declarations()

	require.Len(t, decls, 3)
	assert.Equal(t, []string{"shell", "file_read", "memory_store"}, tm.Names())
	assert.Equal(t, "file_read", decls[1].Name)
	assert.Equal(t, "mock file_read", decls[1].Description)
}

func TestExecute_Success(t *testing.T) {
	events := &eventLog{}
	echo := &mockTool{name: "echo", executeFunc: func(_ context.Context, args map[string]any) tool.Result {
		return tool.OK(args["text"].(string))
	}}
	tm := NewToolManager(events, echo)

	msg := tm.Execute(context.Background(), call("c1", "echo", `{"text":"hello"}`))

	assert.Equal(t, provider.RoleTool, msg.Role)
	assert.Equal(t, "c1", msg.ToolCallID)
	assert.Equal(t, "hello", msg.Content)
	require.NotNil(t, msg.Call)
	assert.Equal(t, "echo", msg.Call.Function.Name)

	require.Len(t, events.events, 2)
	assert.Equal(t, workflow.ToolStartEvent{CallID: "c1", ToolName: "echo", Args: `{"text":"hello"}`}, events.events[0])
	invoked := events.events[1].(workflow.ToolInvokedEvent)
	assert.True(t, invoked.Success)
	assert.Equal(t, "echo", invoked.Name)
}

func TestExecute_UnknownTool(t *testing.T) {
	events := &eventLog{}
	tm := NewToolManager(events, &mockTool{name: "shell"})

	msg := tm.Execute(context.Background(), call("c9", "rm_rf", `{}`))

	assert.Equal(t, "c9", msg.ToolCallID)
	assert.Equal(t, `Error: tool "rm_rf" does not exist. Available tools: shell`, msg.Content)
	invoked := events.events[1].(workflow.ToolInvokedEvent)
	assert.False(t, invoked.Success)
}

func TestExecute_ArgumentErrors(t *testing.T) {
	called := false
	tl := &mockTool{
		name: "file_read",
		schema: &tool.Schema{
			Type:       tool.TypeObject,
			Properties: map[string]*tool.Schema{"path": {Type: tool.TypeString}},
			Required:   []string{"path"},
		},
		executeFunc: func(context.Context, map[string]any) tool.Result {
			called = true
			return tool.OK("")
		},
	}
	tm := NewToolManager(nil, tl)

	tests := []struct {
		name string
		args string
		want string
	}{
		{"malformed json", `{"path":`, "invalid arguments for tool \"file_read\""},
		{"array", `["a"]`, "must be a JSON object"},
		{"missing required", `{}`, `"path": is required`},
		{"wrong type", `{"path": 3}`, "expected string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tm.Execute(context.Background(), call("c", "file_read", tt.args))
			assert.Contains(t, msg.Content, tt.want)
		})
	}
	assert.False(t, called)
}

func TestExecute_EmptyArguments(t *testing.T) {
	var got map[string]any
	tm := NewToolManager(nil, &mockTool{name: "screenshot", executeFunc: func(_ context.Context, args map[string]any) tool.Result {
		got = args
		return tool.OK("done")
	}})

	for _, raw := range []string{"", "null", "  "} {
		msg := tm.Execute(context.Background(), call("c", "screenshot", raw))
		assert.Equal(t, "done", msg.Content)
		assert.NotNil(t, got)
	}
}

func TestExecute_RecoversPanic(t *testing.T) {
	tm := NewToolManager(nil, &mockTool{name: "bad", executeFunc: func(context.Context, map[string]any) tool.Result {
		panic("nil map")
	}})

	msg := tm.Execute(context.Background(), call("c", "bad", `{}`))

	assert.Equal(t, `Error: tool "bad" panicked: nil map`, msg.Content)
}

func TestExecute_CancelledContext(t *testing.T) {
	called := false
	tm := NewToolManager(nil, &mockTool{name: "shell", executeFunc: func(context.Context, map[string]any) tool.Result {
		called = true
		return tool.OK("")
	}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := tm.Execute(ctx, call("c", "shell", `{}`))

	assert.False(t, called)
	assert.Contains(t, msg.Content, "cancelled before shell ran")
}

func TestExecute_Duration(t *testing.T) {
	events := &eventLog{}
	tm := NewToolManager(events, &mockTool{name: "slow"})
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.now = func() time.Time {
		clock = clock.Add(250 * time.Millisecond)
		return clock
	}

	tm.Execute(context.Background(), call("c", "slow", `{}`))

	assert.Equal(t, 250*time.Millisecond, events.events[1].(workflow.ToolInvokedEvent).Duration)
}
