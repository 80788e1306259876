package composio

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/tool"
)

const (
	ActionList    = "list"
	ActionExecute = "execute"
	ActionConnect = "connect"

	listLimit = 50
)

type api interface {
	ListActions(ctx context.Context, app string, limit int) ([]Action, error)
	Execute(ctx context.Context, action, entityID string, params map[string]any) (*ExecuteResult, error)
	Connect(ctx context.Context, app, entityID string) (*Connection, error)
}

type quota interface {
	AuthorizeMutation(subject string, costCents int) error
}

// Tool implements the composio tool.
type Tool struct {
	api      api
	quota    quota
	entityID string
}

func NewTool(client api, quota quota, cfg config.ComposioConfig) *Tool {
	if client == nil || quota == nil {
		panic("client and quota are required")
	}
	entity := cfg.EntityID
	if entity == "" {
		entity = "default"
	}
	return &Tool{api: client, quota: quota, entityID: entity}
}

func (t *Tool) Name() string { return "composio" }

func (t *Tool) Description() string {
	return "Execute actions on third-party apps (Gmail, Notion, GitHub, Slack, ...) via Composio. " +
		"Use action='list' to discover actions, 'execute' to run one, 'connect' to start OAuth for an app."
}

func (t *Tool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"action":      {Type: tool.TypeString, Enum: []string{ActionList, ActionExecute, ActionConnect}},
			"app":         {Type: tool.TypeString, Description: "App name, e.g. github (list, connect)"},
			"action_name": {Type: tool.TypeString, Description: "Action identifier, e.g. GITHUB_CREATE_ISSUE (execute)"},
			"params":      {Type: tool.TypeObject, Description: "Action input (execute)"},
		},
		Required: []string{"action"},
	}
}

type request struct {
	Action     string         `json:"action"`
	App        string         `json:"app,omitempty"`
	ActionName string         `json:"action_name,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
}

func (t *Tool) Execute(ctx context.Context, args map[string]any) tool.Result {
	if err := t.Parameters().Validate(args); err != nil {
		return tool.Fail(err)
	}
	var req request
	if err := tool.DecodeArgs(args, &req); err != nil {
		return tool.Fail(err)
	}

	switch req.Action {
	case ActionList:
		return t.list(ctx, req.App)
	case ActionExecute:
		return t.execute(ctx, req)
	case ActionConnect:
		return t.connect(ctx, req.App)
	default:
		return tool.Failf("unknown action %q", req.Action)
	}
}

func (t *Tool) list(ctx context.Context, app string) tool.Result {
	actions, err := t.api.ListActions(ctx, app, listLimit)
	if err != nil {
		return tool.Failf("failed to list actions: %v", err)
	}
	if len(actions) == 0 {
		return tool.OK("No actions found.")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d actions:\n", len(actions))
	for _, a := range actions {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", a.Name, a.AppName, a.Description)
	}
	return tool.OK(strings.TrimRight(sb.String(), "\n"))
}

func (t *Tool) execute(ctx context.Context, req request) tool.Result {
	if req.ActionName == "" {
		return tool.Fail(&tool.ValidationError{Field: "action_name", Reason: "is required for execute"})
	}
	if err := t.quota.AuthorizeMutation("composio "+req.ActionName, 0); err != nil {
		return tool.Fail(err)
	}
	res, err := t.api.Execute(ctx, req.ActionName, t.entityID, req.Params)
	if err != nil {
		return tool.Failf("failed to execute %s: %v", req.ActionName, err)
	}
	data := strings.TrimSpace(string(res.Data))
	if !res.Successful {
		return tool.Result{Output: data, Error: fmt.Sprintf("%s failed: %s", req.ActionName, res.Error)}
	}
	if data == "" || data == "null" {
		data = "(no data)"
	}
	return tool.OK(data)
}

func (t *Tool) connect(ctx context.Context, app string) tool.Result {
	if app == "" {
		return tool.Fail(&tool.ValidationError{Field: "app", Reason: "is required for connect"})
	}
	if err := t.quota.AuthorizeMutation("composio connect "+app, 0); err != nil {
		return tool.Fail(err)
	}
	conn, err := t.api.Connect(ctx, app, t.entityID)
	if err != nil {
		return tool.Failf("failed to connect %s: %v", app, err)
	}
	if conn.RedirectURL == "" {
		return tool.OK(fmt.Sprintf("%s connection status: %s", app, conn.Status))
	}
	return tool.OK(fmt.Sprintf("Open this URL to authorize %s: %s", app, conn.RedirectURL))
}
