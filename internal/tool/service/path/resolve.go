package path

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps tool-supplied paths onto a workspace.
type Resolver struct {
	workspaceRoot string
	homeDir       func() (string, error)
}

// NewResolver creates a new path resolver for the given canonical workspace root.
func NewResolver(workspaceRoot string) *Resolver {
	return &Resolver{
		workspaceRoot: workspaceRoot,
		homeDir:       os.UserHomeDir,
	}
}

// CanonicaliseRoot canonicalises a workspace root path by making it absolute and resolving symlinks.
// Returns an error if the path doesn't exist or isn't a directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &WorkspaceRootError{Root: root, Cause: err}
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &WorkspaceRootError{Root: absRoot, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &WorkspaceRootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &WorkspaceRootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// Root returns the workspace root.
func (r *Resolver) Root() string { return r.workspaceRoot }

// Expand turns a tool-supplied path into a clean absolute path.
// A leading "~" expands to the home directory and relative paths are joined
// to the workspace root. No boundary check is done here.
func (r *Resolver) Expand(path string) (string, error) {
	if r.workspaceRoot == "" {
		return "", ErrWorkspaceRootNotSet
	}
	if strings.ContainsRune(path, 0) {
		return "", &InvalidPathError{Path: path, Reason: "contains a null byte"}
	}
	if strings.TrimSpace(path) == "" {
		return "", &InvalidPathError{Path: path, Reason: "is empty"}
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := r.homeDir()
		if err != nil {
			return "", &InvalidPathError{Path: path, Reason: "home directory unknown"}
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.workspaceRoot, path)
	}
	return filepath.Clean(path), nil
}

// Confine resolves symlinks in abs and checks that the result stays inside the
// workspace. It returns the resolved absolute path and its slash-separated
// path relative to the root ("" for the root itself).
func (r *Resolver) Confine(abs string) (resolved, rel string, err error) {
	resolved = EvalExisting(abs)
	rel, err = r.Rel(resolved)
	if err != nil {
		return "", "", err
	}
	return resolved, rel, nil
}

// Abs resolves any path to absolute and validates it is within the workspace boundary.
// It cleans the path and ensures it does not escape the workspace root.
func (r *Resolver) Abs(path string) (string, error) {
	if r.workspaceRoot == "" {
		return "", ErrWorkspaceRootNotSet
	}

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(r.workspaceRoot, path))
	}

	// Boundary check: must be the root itself or a child of the root
	if !strings.HasPrefix(abs, r.workspaceRoot+string(filepath.Separator)) && abs != r.workspaceRoot {
		return "", ErrOutsideWorkspace
	}

	return abs, nil
}

// Rel resolves any path to relative to the workspace root and validates it is within the boundary.
func (r *Resolver) Rel(path string) (string, error) {
	abs, err := r.Abs(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(r.workspaceRoot, abs)
	if err != nil {
		return "", ErrOutsideWorkspace
	}

	if rel == "." {
		return "", nil
	}

	return filepath.ToSlash(rel), nil
}

// EvalExisting resolves symlinks on the longest existing prefix of path and
// re-appends the part that does not exist yet, so files about to be created
// are checked against where they will really land.
func EvalExisting(path string) string {
	var suffix []string
	current := path
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			return filepath.Join(append([]string{resolved}, suffix...)...)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return path
		}
		suffix = append([]string{filepath.Base(current)}, suffix...)
		current = parent
	}
}
