package path

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbs(t *testing.T) {
	resolver := NewResolver("/workspace")

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{"relative path within workspace", "src/main.go", "/workspace/src/main.go", nil},
		{"absolute path within workspace", "/workspace/src/main.go", "/workspace/src/main.go", nil},
		{"path with dots within workspace", "src/../src/main.go", "/workspace/src/main.go", nil},
		{"workspace root", ".", "/workspace", nil},
		{"escape attempt via parent dots", "../../../etc/passwd", "", ErrOutsideWorkspace},
		{"absolute path outside workspace", "/etc/passwd", "", ErrOutsideWorkspace},
		{"prefix match but not child", "/workspacefoo/bar", "", ErrOutsideWorkspace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs, err := resolver.Abs(tt.input)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
			assert.Equal(t, tt.expected, abs)
		})
	}
}

func TestRel(t *testing.T) {
	resolver := NewResolver("/workspace")

	rel, err := resolver.Rel("/workspace/src/main.go")
	require.NoError(t, err)
	assert.Equal(t, "src/main.go", rel)

	rel, err = resolver.Rel("/workspace")
	require.NoError(t, err)
	assert.Equal(t, "", rel)

	_, err = resolver.Rel("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideWorkspace)
}

func TestExpand(t *testing.T) {
	resolver := NewResolver("/workspace")
	resolver.homeDir = func() (string, error) { return "/home/user", nil }

	tests := []struct {
		input    string
		expected string
	}{
		{"notes.md", "/workspace/notes.md"},
		{"./a/../b.txt", "/workspace/b.txt"},
		{"/tmp/x", "/tmp/x"},
		{"~", "/home/user"},
		{"~/docs/a.txt", "/home/user/docs/a.txt"},
		{"~user", "/workspace/~user"},
	}
	for _, tt := range tests {
		got, err := resolver.Expand(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got, tt.input)
	}

	for _, bad := range []string{"", "   ", "a\x00b"} {
		_, err := resolver.Expand(bad)
		assert.ErrorIs(t, err, ErrInvalidPath)
	}

	_, err := NewResolver("").Expand("a")
	assert.ErrorIs(t, err, ErrWorkspaceRootNotSet)
}

func TestConfine_FollowsSymlinks(t *testing.T) {
	root, err := CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	outside, err := CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(root, "real"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

	resolver := NewResolver(root)

	resolved, rel, err := resolver.Confine(filepath.Join(root, "alias", "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "real", "new.txt"), resolved)
	assert.Equal(t, "real/new.txt", rel)

	_, _, err = resolver.Confine(filepath.Join(root, "escape", "new.txt"))
	assert.ErrorIs(t, err, ErrOutsideWorkspace)
}

func TestEvalExisting_MissingTail(t *testing.T) {
	root, err := CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "b", "c"), EvalExisting(filepath.Join(root, "a", "b", "c")))
}

func TestCanonicaliseRoot(t *testing.T) {
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	t.Run("valid directory", func(t *testing.T) {
		got, err := CanonicaliseRoot(tmpDir)
		require.NoError(t, err)
		assert.Equal(t, tmpDir, got)
	})

	t.Run("non-existent path", func(t *testing.T) {
		_, err := CanonicaliseRoot(filepath.Join(tmpDir, "non-existent"))
		assert.Error(t, err)
	})

	t.Run("file instead of directory", func(t *testing.T) {
		tmpFile := filepath.Join(tmpDir, "file.txt")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))
		_, err := CanonicaliseRoot(tmpFile)
		assert.ErrorIs(t, err, ErrNotADirectory)
	})
}
