package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/security"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/Cyclone1070/claw/internal/tool/service/executor"
)

// ShellTool executes commands with sh -c inside the workspace.
type ShellTool struct {
	policy          commandPolicy
	gate            approvalGate
	commandExecutor commandExecutor
	envFileOps      envFileReader
	config          config.ToolsConfig
}

// NewShellTool creates a new ShellTool with injected dependencies.
func NewShellTool(
	policy commandPolicy,
	gate approvalGate,
	commandExecutor commandExecutor,
	envFileOps envFileReader,
	cfg config.ToolsConfig,
) *ShellTool {
	if policy == nil {
		panic("policy is required")
	}
	if gate == nil {
		panic("gate is required")
	}
	if commandExecutor == nil {
		panic("commandExecutor is required")
	}
	return &ShellTool{
		policy:          policy,
		gate:            gate,
		commandExecutor: commandExecutor,
		envFileOps:      envFileOps,
		config:          cfg,
	}
}

func (t *ShellTool) Name() string { return "shell" }

func (t *ShellTool) Description() string {
	return "Execute a shell command in the workspace. Commands are checked against the security policy; risky ones may need operator approval or be refused."
}

func (t *ShellTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"command":         {Type: tool.TypeString, Description: "The shell command to execute"},
			"working_dir":     {Type: tool.TypeString, Description: "Directory to run in, relative to the workspace (default: workspace root)"},
			"timeout_seconds": {Type: tool.TypeInteger, Description: fmt.Sprintf("Timeout in seconds (max %d)", t.config.ShellTimeoutSeconds)},
		},
		Required: []string{"command"},
	}
}

// Execute authorizes the command, asks for approval when the policy requires
// it, charges one action and only then runs the command.
func (t *ShellTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req ShellRequest
	if err := tool.DecodeArgs(args, &req); err != nil {
		return tool.Fail(err)
	}
	if err := req.Validate(); err != nil {
		return tool.Fail(err)
	}

	workingDir := req.WorkingDir
	if workingDir == "" {
		workingDir = "."
	}
	dir, err := t.policy.ResolvePath(workingDir)
	if err != nil {
		return tool.Fail(err)
	}

	auth := t.policy.AuthorizeCommand(req.Command)
	switch auth.Decision {
	case security.Deny:
		return tool.Fail(&security.PolicyDeniedError{Subject: req.Command, Reason: fmt.Sprintf("%s (risk: %s)", auth.Reason, auth.Risk)})
	case security.RequireApproval:
		if err := t.gate.Approve(ctx, security.ApprovalRequest{
			Tool:    t.Name(),
			Command: req.Command,
			Risk:    auth.Risk,
			Reason:  auth.Reason,
		}); err != nil {
			return tool.Fail(err)
		}
	}

	if err := t.policy.RecordAction(0); err != nil {
		return tool.Fail(err)
	}

	env, err := t.environment()
	if err != nil {
		return tool.Fail(err)
	}

	timeout := time.Duration(t.config.ShellTimeoutSeconds) * time.Second
	if req.TimeoutSeconds > 0 {
		timeout = min(timeout, time.Duration(req.TimeoutSeconds)*time.Second)
	}

	result, execErr := t.commandExecutor.Run(ctx, executor.Command{
		Argv:    []string{"sh", "-c", req.Command},
		Dir:     dir,
		Env:     env,
		Timeout: timeout,
	})
	if result == nil {
		result = &executor.Result{ExitCode: -1}
	}
	output := formatOutput(result)

	switch {
	case execErr == nil:
		return tool.OK(output)
	case errors.Is(execErr, executor.ErrTimeout):
		return tool.Result{Output: output, Error: (&TimeoutError{Command: req.Command, Duration: timeout}).Error()}
	case errors.Is(execErr, context.Canceled), errors.Is(execErr, context.DeadlineExceeded):
		return tool.Result{Output: output, Error: "command cancelled: " + execErr.Error()}
	case result.ExitCode > 0:
		return tool.Result{Output: output, Error: fmt.Sprintf("exit status %d", result.ExitCode)}
	default:
		return tool.Result{Output: output, Error: execErr.Error()}
	}
}

func (t *ShellTool) environment() ([]string, error) {
	if len(t.config.EnvFiles) == 0 || t.envFileOps == nil {
		return os.Environ(), nil
	}
	paths := make([]string, 0, len(t.config.EnvFiles))
	for _, f := range t.config.EnvFiles {
		abs, err := t.policy.ResolvePath(f)
		if err != nil {
			return nil, err
		}
		paths = append(paths, abs)
	}
	vars, err := LoadEnvFiles(t.envFileOps, paths)
	if err != nil {
		return nil, err
	}
	return mergeEnv(os.Environ(), vars), nil
}

func formatOutput(r *executor.Result) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(r.Stdout, "\n"))
	if stderr := strings.TrimRight(r.Stderr, "\n"); stderr != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("[stderr]\n")
		sb.WriteString(stderr)
	}
	if r.Truncated {
		sb.WriteString("\n[output truncated]")
	}
	if sb.Len() == 0 {
		return "(no output)"
	}
	return sb.String()
}
