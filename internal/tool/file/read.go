package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/Cyclone1070/claw/internal/tool/service/fs"
)

// ReadFileTool returns a window of numbered lines from a text file.
type ReadFileTool struct {
	fileOps fileReader
	policy  pathPolicy
	config  config.ToolsConfig
}

// NewReadFileTool creates a new ReadFileTool with injected dependencies.
func NewReadFileTool(fileOps fileReader, policy pathPolicy, cfg config.ToolsConfig) *ReadFileTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &ReadFileTool{fileOps: fileOps, policy: policy, config: cfg}
}

func (t *ReadFileTool) Name() string { return "file_read" }

func (t *ReadFileTool) Description() string {
	return "Read a text file in the workspace. Lines are numbered from 1; use offset and limit to page through large files."
}

func (t *ReadFileTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"path":   {Type: tool.TypeString, Description: "Path to the file, relative to the workspace"},
			"offset": {Type: tool.TypeInteger, Description: "First line to return (1-based, default 1)"},
			"limit":  {Type: tool.TypeInteger, Description: fmt.Sprintf("Maximum number of lines to return (default %d)", t.config.DefaultReadLineLimit)},
		},
		Required: []string{"path"},
	}
}

// Execute reads the file after checking the path against the policy.
// Binary files and files above the size limit are rejected.
func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req ReadFileRequest
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

	data, err := t.fileOps.ReadFile(abs, t.config.MaxFileSize)
	if err != nil {
		return tool.Fail(describeReadError(req.Path, err))
	}
	if fs.IsBinaryContent(data) {
		return tool.Failf("%s: %s", ErrBinaryFile, req.Path)
	}

	lines := fs.SplitLines(string(data))
	total := len(lines)
	if total == 0 {
		return tool.OK(fmt.Sprintf("%s is empty", req.Path))
	}

	start := 1
	if req.Offset != nil {
		start = *req.Offset
	}
	if start > total {
		return tool.Fail(&LineRangeError{Line: start, Total: total})
	}
	limit := t.config.DefaultReadLineLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	end := min(total, start+limit-1)

	var sb strings.Builder
	for i := start; i <= end; i++ {
		fmt.Fprintf(&sb, "%6d\t%s\n", i, lines[i-1])
	}
	if start > 1 || end < total {
		fmt.Fprintf(&sb, "\n(showing lines %d-%d of %d)", start, end, total)
	}
	return tool.OK(strings.TrimSuffix(sb.String(), "\n"))
}

func describeReadError(path string, err error) error {
	var tooLarge *fs.FileTooLargeError
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrFileMissing, path)
	case errors.Is(err, fs.ErrIsDirectory):
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	case errors.As(err, &tooLarge):
		return fmt.Errorf("%w: %s (size %d, limit %d)", ErrFileTooLarge, path, tooLarge.Size, tooLarge.Limit)
	default:
		return err
	}
}
