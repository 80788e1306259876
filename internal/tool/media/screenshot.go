package media

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/Cyclone1070/claw/internal/tool/service/executor"
)

const captureTimeout = time.Minute

// ErrNoScreenshotTool is returned when no capture program is installed.
var ErrNoScreenshotTool = errors.New("no screenshot program found (tried screencapture, gnome-screenshot, import)")

// ScreenshotTool captures the screen into the workspace.
type ScreenshotTool struct {
	policy   mutationPolicy
	runner   commandRunner
	fileOps  fileOps
	config   config.ToolsConfig
	goos     string
	lookPath func(string) (string, error)
	now      func() time.Time
}

func NewScreenshotTool(policy mutationPolicy, runner commandRunner, fileOps fileOps, cfg config.ToolsConfig) *ScreenshotTool {
	if policy == nil || runner == nil || fileOps == nil {
		panic("policy, runner and fileOps are required")
	}
	return &ScreenshotTool{
		policy:   policy,
		runner:   runner,
		fileOps:  fileOps,
		config:   cfg,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		now:      time.Now,
	}
}

func (t *ScreenshotTool) Name() string { return "screenshot" }

func (t *ScreenshotTool) Description() string {
	return fmt.Sprintf("Capture the screen and save it as a PNG under %s/ in the workspace.", t.config.ScreenshotDir)
}

func (t *ScreenshotTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"filename": {Type: tool.TypeString, Description: "File name (default: screenshot_<timestamp>.png)"},
		},
	}
}

type screenshotRequest struct {
	Filename string `json:"filename,omitempty"`
}

func (t *ScreenshotTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req screenshotRequest
	if err := tool.DecodeArgs(args, &req); err != nil {
		return tool.Fail(err)
	}
	name := req.Filename
	if name == "" {
		name = fmt.Sprintf("screenshot_%s.png", t.now().Format("20060102_150405"))
	}
	if strings.ContainsAny(name, `/\`) {
		return tool.Fail(&tool.ValidationError{Field: "filename", Reason: "must be a plain file name"})
	}
	if filepath.Ext(name) == "" {
		name += ".png"
	}

	rel := filepath.Join(t.config.ScreenshotDir, name)
	abs, err := t.policy.ResolvePath(rel)
	if err != nil {
		return tool.Fail(err)
	}

	cmd, err := t.captureCommand(abs)
	if err != nil {
		return tool.Fail(err)
	}
	if err := t.policy.AuthorizeMutation(rel, 0); err != nil {
		return tool.Fail(err)
	}
	if err := t.fileOps.EnsureDirs(filepath.Dir(abs)); err != nil {
		return tool.Failf("failed to create %s: %v", filepath.Dir(rel), err)
	}

	res, err := t.runner.Run(ctx, executor.Command{Argv: cmd, Dir: filepath.Dir(abs), Timeout: captureTimeout})
	if err != nil {
		msg := err.Error()
		if res != nil && strings.TrimSpace(res.Stderr) != "" {
			msg += ": " + strings.TrimSpace(res.Stderr)
		}
		return tool.Failf("%s failed: %s", cmd[0], msg)
	}

	info, err := t.fileOps.Stat(abs)
	if err != nil {
		return tool.Failf("%s did not produce %s", cmd[0], rel)
	}
	return tool.OK(fmt.Sprintf("Screenshot saved to %s (%d bytes)", filepath.ToSlash(rel), info.Size()))
}

// captureCommand picks the capture program for the platform.
func (t *ScreenshotTool) captureCommand(out string) ([]string, error) {
	candidates := [][]string{
		{"gnome-screenshot", "-f", out},
		{"import", "-window", "root", out},
	}
	if t.goos == "darwin" {
		candidates = [][]string{{"screencapture", "-x", out}}
	}
	for _, c := range candidates {
		if _, err := t.lookPath(c[0]); err == nil {
			return c, nil
		}
	}
	return nil, ErrNoScreenshotTool
}
