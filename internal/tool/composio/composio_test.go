package composio

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	ListActionsFunc func(ctx context.Context, app string, limit int) ([]Action, error)
	ExecuteFunc     func(ctx context.Context, action, entityID string, params map[string]any) (*ExecuteResult, error)
	ConnectFunc     func(ctx context.Context, app, entityID string) (*Connection, error)
}

func (m *mockAPI) ListActions(ctx context.Context, app string, limit int) ([]Action, error) {
	return m.ListActionsFunc(ctx, app, limit)
}

func (m *mockAPI) Execute(ctx context.Context, action, entityID string, params map[string]any) (*ExecuteResult, error) {
	return m.ExecuteFunc(ctx, action, entityID, params)
}

func (m *mockAPI) Connect(ctx context.Context, app, entityID string) (*Connection, error) {
	return m.ConnectFunc(ctx, app, entityID)
}

type mockQuota struct {
	err      error
	subjects []string
}

func (m *mockQuota) AuthorizeMutation(subject string, costCents int) error {
	m.subjects = append(m.subjects, subject)
	return m.err
}

func newTool(a *mockAPI, q *mockQuota) *Tool {
	return NewTool(a, q, config.ComposioConfig{Enabled: true, EntityID: "me"})
}

func TestTool_List(t *testing.T) {
	a := &mockAPI{ListActionsFunc: func(_ context.Context, app string, limit int) ([]Action, error) {
		assert.Equal(t, "slack", app)
		assert.Equal(t, listLimit, limit)
		return []Action{{Name: "SLACK_SEND", AppName: "slack", Description: "Send a message"}}, nil
	}}
	q := &mockQuota{}

	res := newTool(a, q).Execute(context.Background(), map[string]any{"action": "list", "app": "slack"})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Found 1 actions:\n- SLACK_SEND (slack): Send a message", res.Output)
	assert.Empty(t, q.subjects)
}

func TestTool_ListEmpty(t *testing.T) {
	a := &mockAPI{ListActionsFunc: func(context.Context, string, int) ([]Action, error) { return nil, nil }}
	res := newTool(a, &mockQuota{}).Execute(context.Background(), map[string]any{"action": "list"})
	assert.Equal(t, "No actions found.", res.Output)
}

func TestTool_Execute(t *testing.T) {
	a := &mockAPI{ExecuteFunc: func(_ context.Context, action, entityID string, params map[string]any) (*ExecuteResult, error) {
		assert.Equal(t, "SLACK_SEND", action)
		assert.Equal(t, "me", entityID)
		assert.Equal(t, "hi", params["text"])
		return &ExecuteResult{Data: json.RawMessage(`{"ok":true}`), Successful: true}, nil
	}}
	q := &mockQuota{}

	res := newTool(a, q).Execute(context.Background(), map[string]any{
		"action":      "execute",
		"action_name": "SLACK_SEND",
		"params":      map[string]any{"text": "hi"},
	})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, `{"ok":true}`, res.Output)
	assert.Equal(t, []string{"composio SLACK_SEND"}, q.subjects)
}

func TestTool_ExecuteUnsuccessful(t *testing.T) {
	a := &mockAPI{ExecuteFunc: func(context.Context, string, string, map[string]any) (*ExecuteResult, error) {
		return &ExecuteResult{Successful: false, Error: "channel not found"}, nil
	}}

	res := newTool(a, &mockQuota{}).Execute(context.Background(), map[string]any{"action": "execute", "action_name": "SLACK_SEND"})

	assert.False(t, res.Success)
	assert.Equal(t, "SLACK_SEND failed: channel not found", res.Error)
}

func TestTool_ExecuteDeniedByQuota(t *testing.T) {
	called := false
	a := &mockAPI{ExecuteFunc: func(context.Context, string, string, map[string]any) (*ExecuteResult, error) {
		called = true
		return &ExecuteResult{Successful: true}, nil
	}}

	res := newTool(a, &mockQuota{err: errors.New("quota exceeded")}).Execute(context.Background(),
		map[string]any{"action": "execute", "action_name": "X"})

	assert.False(t, res.Success)
	assert.False(t, called)
}

func TestTool_Connect(t *testing.T) {
	a := &mockAPI{ConnectFunc: func(_ context.Context, app, _ string) (*Connection, error) {
		return &Connection{RedirectURL: "https://auth/" + app}, nil
	}}

	res := newTool(a, &mockQuota{}).Execute(context.Background(), map[string]any{"action": "connect", "app": "gmail"})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Open this URL to authorize gmail: https://auth/gmail", res.Output)
}

func TestTool_ValidationErrors(t *testing.T) {
	tl := newTool(&mockAPI{}, &mockQuota{})

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{"missing action", map[string]any{}, `"action": is required`},
		{"unknown action", map[string]any{"action": "delete"}, "must be one of"},
		{"execute without name", map[string]any{"action": "execute"}, `"action_name"`},
		{"connect without app", map[string]any{"action": "connect"}, `"app"`},
		{"params not object", map[string]any{"action": "execute", "action_name": "X", "params": "a=b"}, "expected object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tl.Execute(context.Background(), tt.args)
			assert.False(t, res.Success)
			assert.Contains(t, res.Error, tt.wantErr)
		})
	}
}
