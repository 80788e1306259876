package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/Cyclone1070/claw/internal/tool/service/fs"
	"github.com/pmezard/go-difflib/difflib"
)

// EditFileTool inserts, deletes or replaces whole lines of an existing file.
type EditFileTool struct {
	fileOps fileWriter
	policy  mutationPolicy
	config  config.ToolsConfig
}

// NewEditFileTool creates a new EditFileTool with injected dependencies.
func NewEditFileTool(fileOps fileWriter, policy mutationPolicy, cfg config.ToolsConfig) *EditFileTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &EditFileTool{fileOps: fileOps, policy: policy, config: cfg}
}

func (t *EditFileTool) Name() string { return "file_edit" }

func (t *EditFileTool) Description() string {
	return "Edit a file: insert lines, delete lines, or replace content at specific line numbers"
}

func (t *EditFileTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"path": {Type: tool.TypeString, Description: "Path to the file, relative to the workspace"},
			"operation": {
				Type:        tool.TypeString,
				Description: "insert (add lines), delete (remove lines) or replace (substitute lines)",
				Enum:        []string{OpInsert, OpDelete, OpReplace},
			},
			"line": {
				Type:        tool.TypeInteger,
				Description: "1-based line number. insert: the content becomes this line (0 inserts at the top, past the end appends). delete/replace: first line of the range.",
			},
			"end_line": {Type: tool.TypeInteger, Description: "Last line of a delete or replace range (defaults to line)"},
			"content":  {Type: tool.TypeString, Description: "Content to insert or replace with (not needed for delete)"},
		},
		Required: []string{"path", "operation", "line"},
	}
}

// Execute validates the request completely before the file is written, so a
// failed edit never leaves a partial write behind. Line endings and the final
// newline of the file are preserved.
func (t *EditFileTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req EditFileRequest
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
	if err := t.policy.AuthorizeMutation(req.Path, 0); err != nil {
		return tool.Fail(err)
	}

	info, err := t.fileOps.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.Failf("%s: %s", ErrFileMissing, req.Path)
		}
		return tool.Failf("failed to stat %s: %v", req.Path, err)
	}
	if info.IsDir() {
		return tool.Failf("%s: %s", ErrIsDirectory, req.Path)
	}

	data, err := t.fileOps.ReadFile(abs, t.config.MaxFileSize)
	if err != nil {
		return tool.Fail(describeReadError(req.Path, err))
	}
	if fs.IsBinaryContent(data) {
		return tool.Failf("%s: %s", ErrBinaryFile, req.Path)
	}

	raw := string(data)
	hasCRLF := strings.Contains(raw, "\r\n")
	oldContent := strings.ReplaceAll(raw, "\r\n", "\n")

	lines, changed, err := applyEdit(fs.SplitLines(oldContent), &req)
	if err != nil {
		return tool.Fail(err)
	}

	newContent := strings.Join(lines, "\n")
	if len(lines) > 0 && strings.HasSuffix(oldContent, "\n") {
		newContent += "\n"
	}
	final := newContent
	if hasCRLF {
		final = strings.ReplaceAll(newContent, "\n", "\r\n")
	}
	if int64(len(final)) > t.config.MaxFileSize {
		return tool.Failf("%s after edit: %s (size %d, limit %d)", ErrFileTooLarge, req.Path, len(final), t.config.MaxFileSize)
	}

	if err := t.fileOps.WriteFileAtomic(abs, []byte(final), info.Mode().Perm()); err != nil {
		return tool.Failf("failed to write %s: %v", req.Path, err)
	}

	out := fmt.Sprintf("%s operation completed. %d lines changed in %s", req.Operation, changed, req.Path)
	if diff, _, _ := computeUnifiedDiff(filepath.Base(abs), oldContent, newContent); diff != "" {
		out += "\n\n" + diff
	}
	return tool.OK(out)
}

// applyEdit applies req to lines and returns the new lines and how many lines
// were inserted, deleted or replaced.
//
// Insert places the content so that it starts at req.Line: line 0 and 1 insert
// at the top and any line past the end appends. Delete and replace operate on
// [line, end_line] clamped to the file; a start line past the end is an error.
func applyEdit(lines []string, req *EditFileRequest) ([]string, int, error) {
	total := len(lines)

	if req.Operation == OpInsert {
		content := contentLines(*req.Content)
		pos := min(max(req.Line-1, 0), total)
		return slices.Concat(lines[:pos], content, lines[pos:]), len(content), nil
	}

	start := max(req.Line, 1)
	if start > total {
		return nil, 0, &LineRangeError{Line: req.Line, Total: total}
	}
	end := min(max(req.endLine(), start), total)

	switch req.Operation {
	case OpDelete:
		return slices.Concat(lines[:start-1], lines[end:]), end - start + 1, nil
	case OpReplace:
		return slices.Concat(lines[:start-1], contentLines(*req.Content), lines[end:]), end - start + 1, nil
	default:
		return nil, 0, fmt.Errorf("%w %q", ErrUnknownOperation, req.Operation)
	}
}

// contentLines splits edit content into lines. Empty content is one empty line.
func contentLines(content string) []string {
	lines := fs.SplitLines(strings.ReplaceAll(content, "\r\n", "\n"))
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func computeUnifiedDiff(filename, oldContent, newContent string) (diff string, added, removed int) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  3,
	}
	diff, _ = difflib.GetUnifiedDiffString(ud)

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			added++
		} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
			removed++
		}
	}
	return diff, added, removed
}
