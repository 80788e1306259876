package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Cyclone1070/claw/internal/tool"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const (
	defaultListLimit = 200
	maxListEntries   = 2000
	maxGitignoreSize = 1 << 20
)

// DirectoryEntry is one listed path, relative to the workspace.
type DirectoryEntry struct {
	RelativePath string
	IsDir        bool
	Size         int64
}

// ListDirectoryTool lists directory contents, honouring the workspace
// .gitignore and the policy's forbidden paths.
type ListDirectoryTool struct {
	fileOps dirReader
	policy  listPolicy
}

// NewListDirectoryTool creates a new ListDirectoryTool with injected dependencies.
func NewListDirectoryTool(fileOps dirReader, policy listPolicy) *ListDirectoryTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &ListDirectoryTool{fileOps: fileOps, policy: policy}
}

func (t *ListDirectoryTool) Name() string { return "file_list" }

func (t *ListDirectoryTool) Description() string {
	return "List files and directories in the workspace. Directories come first. Paths ignored by .gitignore are skipped unless include_ignored is set."
}

func (t *ListDirectoryTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"path":            {Type: tool.TypeString, Description: "Directory relative to the workspace (default: the workspace root)"},
			"max_depth":       {Type: tool.TypeInteger, Description: "0 lists immediate children (default), -1 recurses without limit"},
			"limit":           {Type: tool.TypeInteger, Description: fmt.Sprintf("Maximum entries to return (default %d)", defaultListLimit)},
			"include_ignored": {Type: tool.TypeBoolean, Description: "Include paths matched by .gitignore"},
		},
	}
}

// Execute lists the directory after checking it against the policy.
func (t *ListDirectoryTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req ListDirectoryRequest
	if err := tool.DecodeArgs(args, &req); err != nil {
		return tool.Fail(err)
	}
	if err := req.Validate(); err != nil {
		return tool.Fail(err)
	}
	if req.Path == "" {
		req.Path = "."
	}

	abs, err := t.policy.ResolvePath(req.Path)
	if err != nil {
		return tool.Fail(err)
	}
	info, err := t.fileOps.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tool.Failf("%s: %s", ErrFileMissing, req.Path)
		}
		return tool.Fail(err)
	}
	if !info.IsDir() {
		return tool.Failf("%s: %s", ErrNotDirectory, req.Path)
	}

	maxDepth := 0
	if req.MaxDepth != nil {
		maxDepth = *req.MaxDepth
	}
	limit := defaultListLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	w := &walker{
		fileOps: t.fileOps,
		policy:  t.policy,
		root:    t.policy.WorkspaceRoot(),
		visited: make(map[string]bool),
	}
	if !req.IncludeIgnored {
		w.ignore = t.loadGitignore(w.root)
	}
	if err := w.walk(ctx, abs, 0, maxDepth); err != nil {
		return tool.Fail(err)
	}

	entries := w.entries
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].RelativePath < entries[j].RelativePath
	})

	if len(entries) == 0 {
		return tool.OK(fmt.Sprintf("%s is empty", req.Path))
	}

	total := len(entries)
	if total > limit {
		entries = entries[:limit]
	}
	var sb strings.Builder
	for _, e := range entries {
		if e.IsDir {
			fmt.Fprintf(&sb, "%s/\n", e.RelativePath)
		} else {
			fmt.Fprintf(&sb, "%s (%d bytes)\n", e.RelativePath, e.Size)
		}
	}
	switch {
	case w.capped:
		fmt.Fprintf(&sb, "\n(results capped at %d entries)", maxListEntries)
	case total > limit:
		fmt.Fprintf(&sb, "\n(showing %d of %d entries)", limit, total)
	}
	return tool.OK(strings.TrimSuffix(sb.String(), "\n"))
}

// loadGitignore parses the workspace root .gitignore. A missing or
// unreadable file ignores nothing.
func (t *ListDirectoryTool) loadGitignore(root string) gitignore.Matcher {
	data, err := t.fileOps.ReadFile(filepath.Join(root, ".gitignore"), maxGitignoreSize)
	if err != nil {
		return nil
	}
	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return gitignore.NewMatcher(patterns)
}

type walker struct {
	fileOps dirReader
	policy  listPolicy
	root    string
	ignore  gitignore.Matcher
	visited map[string]bool

	entries []DirectoryEntry
	capped  bool
}

// walk collects the children of dir. depth counts from 0 at the listed
// directory; maxDepth -1 is unlimited.
func (w *walker) walk(ctx context.Context, dir string, depth, maxDepth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		canonical = dir
	}
	if w.visited[canonical] {
		return nil
	}
	w.visited[canonical] = true

	children, err := w.fileOps.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}
	for _, child := range children {
		if len(w.entries) >= maxListEntries {
			w.capped = true
			return nil
		}
		abs := filepath.Join(dir, child.Name())
		rel, err := filepath.Rel(w.root, abs)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		// Symlinks are followed through the policy so links leaving the
		// workspace are dropped.
		resolved, err := w.policy.ResolvePath(rel)
		if err != nil {
			continue
		}
		info, err := w.fileOps.Stat(resolved)
		if err != nil {
			continue
		}
		if w.ignore != nil && w.ignore.Match(strings.Split(rel, "/"), info.IsDir()) {
			continue
		}

		w.entries = append(w.entries, DirectoryEntry{RelativePath: rel, IsDir: info.IsDir(), Size: sizeOf(info)})
		if info.IsDir() && (maxDepth < 0 || depth < maxDepth) {
			if err := w.walk(ctx, resolved, depth+1, maxDepth); err != nil {
				return err
			}
		}
	}
	return nil
}

func sizeOf(info os.FileInfo) int64 {
	if info.IsDir() {
		return 0
	}
	return info.Size()
}
