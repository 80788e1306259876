package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/Cyclone1070/claw/internal/tool/service/fs"
)

// WriteFileTool creates or overwrites a file.
type WriteFileTool struct {
	fileOps fileWriter
	policy  mutationPolicy
	config  config.ToolsConfig
}

// NewWriteFileTool creates a new WriteFileTool with injected dependencies.
func NewWriteFileTool(fileOps fileWriter, policy mutationPolicy, cfg config.ToolsConfig) *WriteFileTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &WriteFileTool{fileOps: fileOps, policy: policy, config: cfg}
}

func (t *WriteFileTool) Name() string { return "file_write" }

func (t *WriteFileTool) Description() string {
	return "Write content to a file in the workspace, replacing it if it exists. Parent directories are created."
}

func (t *WriteFileTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"path":    {Type: tool.TypeString, Description: "Path to the file, relative to the workspace"},
			"content": {Type: tool.TypeString, Description: "Full file content"},
		},
		Required: []string{"path", "content"},
	}
}

// Execute writes the file atomically. The action is charged against the quota
// after validation and before anything touches the disk.
func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req WriteFileRequest
	if err := tool.DecodeArgs(args, &req); err != nil {
		return tool.Fail(err)
	}
	if err := req.Validate(); err != nil {
		return tool.Fail(err)
	}

	abs, err := t.policy.ResolvePath(req.Path)
	if err != nil {
		return tool.Fail(err)
	}

	content := []byte(*req.Content)
	if fs.IsBinaryContent(content) {
		return tool.Failf("%s: refusing to write binary content to %s", ErrBinaryFile, req.Path)
	}
	if int64(len(content)) > t.config.MaxFileSize {
		return tool.Failf("%s: %s (size %d, limit %d)", ErrFileTooLarge, req.Path, len(content), t.config.MaxFileSize)
	}

	if err := t.policy.AuthorizeMutation(req.Path, 0); err != nil {
		return tool.Fail(err)
	}

	perm := os.FileMode(0o644)
	var previous []byte
	existed := false
	if info, err := t.fileOps.Stat(abs); err == nil {
		if info.IsDir() {
			return tool.Failf("%s: %s", ErrIsDirectory, req.Path)
		}
		existed = true
		perm = info.Mode().Perm()
		// Best effort, only used for the diff.
		previous, _ = t.fileOps.ReadFile(abs, t.config.MaxFileSize)
	} else if !os.IsNotExist(err) {
		return tool.Failf("failed to stat %s: %v", req.Path, err)
	}

	if err := t.fileOps.EnsureDirs(filepath.Dir(abs)); err != nil {
		return tool.Failf("failed to create parent directories for %s: %v", req.Path, err)
	}
	if err := t.fileOps.WriteFileAtomic(abs, content, perm); err != nil {
		return tool.Failf("failed to write %s: %v", req.Path, err)
	}

	if !existed {
		return tool.OK(fmt.Sprintf("Created %s (%d bytes)", req.Path, len(content)))
	}
	out := fmt.Sprintf("Wrote %d bytes to %s", len(content), req.Path)
	if diff, added, removed := computeUnifiedDiff(filepath.Base(abs), string(previous), *req.Content); diff != "" {
		out += fmt.Sprintf(" (+%d -%d)\n\n%s", added, removed, diff)
	}
	return tool.OK(out)
}
