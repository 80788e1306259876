package agent

import (
	"net/http"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/memory"
	"github.com/Cyclone1070/claw/internal/security"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/Cyclone1070/claw/internal/tool/browser"
	"github.com/Cyclone1070/claw/internal/tool/composio"
	"github.com/Cyclone1070/claw/internal/tool/file"
	"github.com/Cyclone1070/claw/internal/tool/media"
	memtool "github.com/Cyclone1070/claw/internal/tool/memory"
	"github.com/Cyclone1070/claw/internal/tool/service/executor"
	"github.com/Cyclone1070/claw/internal/tool/service/fs"
	"github.com/Cyclone1070/claw/internal/tool/shell"
)

// ToolDeps are the shared handles the tools are built over.
type ToolDeps struct {
	Config     *config.Config
	Policy     *security.Policy
	Gate       *security.Gate
	Memory     memory.Store
	HTTPClient *http.Client
}

// BuildTools returns the session's tools in prompt order. Optional tools are
// included only when enabled in the configuration.
func BuildTools(deps ToolDeps) []tool.Tool {
	cfg := deps.Config
	files := fs.NewOSFileSystem()
	exec := executor.New(deps.Policy.WorkspaceRoot(), cfg.Tools)

	tools := []tool.Tool{
		shell.NewShellTool(deps.Policy, deps.Gate, exec, files, cfg.Tools),
		file.NewReadFileTool(files, deps.Policy, cfg.Tools),
		file.NewWriteFileTool(files, deps.Policy, cfg.Tools),
		file.NewEditFileTool(files, deps.Policy, cfg.Tools),
		file.NewListDirectoryTool(files, deps.Policy),
		memtool.NewStoreTool(deps.Memory, deps.Policy),
		memtool.NewRecallTool(deps.Memory),
		memtool.NewForgetTool(deps.Memory, deps.Policy),
		media.NewScreenshotTool(deps.Policy, exec, files, cfg.Tools),
		media.NewImageInfoTool(deps.Policy, files, cfg.Tools),
	}

	if cfg.Browser.Enabled {
		tools = append(tools, browser.NewOpenTool(deps.Policy, exec, cfg.Browser))
	}
	if cfg.Composio.Enabled {
		client := composio.NewClient(cfg.Composio.BaseURL, cfg.Composio.APIKey, deps.HTTPClient)
		tools = append(tools, composio.NewTool(client, deps.Policy, cfg.Composio))
	}
	return tools
}
