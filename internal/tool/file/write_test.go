package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_CreatesParents(t *testing.T) {
	env := newTestEnv(t, nil)

	res := env.write.Execute(ctx, map[string]any{"path": "docs/new/notes.md", "content": "# Notes\n"})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Created docs/new/notes.md (8 bytes)", res.Output)
	assert.Equal(t, "# Notes\n", env.get(t, "docs/new/notes.md"))
	assert.Equal(t, 1, env.policy.Usage().ActionsThisHour)
}

func TestWriteFile_OverwriteShowsDiffAndKeepsMode(t *testing.T) {
	env := newTestEnv(t, nil)
	env.put(t, "run.sh", "echo one\n")
	require.NoError(t, os.Chmod(filepath.Join(env.root, "run.sh"), 0o755))

	res := env.write.Execute(ctx, map[string]any{"path": "run.sh", "content": "echo two\n"})

	require.True(t, res.Success, res.Error)
	assert.Contains(t, res.Output, "Wrote 9 bytes to run.sh (+1 -1)")
	assert.Contains(t, res.Output, "-echo one")
	assert.Contains(t, res.Output, "+echo two")
	info, err := os.Stat(filepath.Join(env.root, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestWriteFile_EmptyContentAllowed(t *testing.T) {
	env := newTestEnv(t, nil)

	res := env.write.Execute(ctx, map[string]any{"path": "empty", "content": ""})

	assert.True(t, res.Success, res.Error)
	assert.Equal(t, "", env.get(t, "empty"))
}

func TestWriteFile_Denied(t *testing.T) {
	t.Run("read only", func(t *testing.T) {
		env := newTestEnv(t, func(c *config.Config) { c.Autonomy.Level = "readonly" })
		res := env.write.Execute(ctx, map[string]any{"path": "a.txt", "content": "x"})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "read-only")
		assert.NoFileExists(t, filepath.Join(env.root, "a.txt"))
	})

	t.Run("quota exhausted", func(t *testing.T) {
		env := newTestEnv(t, func(c *config.Config) { c.Autonomy.MaxActionsPerHour = 1 })
		require.True(t, env.write.Execute(ctx, map[string]any{"path": "a.txt", "content": "x"}).Success)

		res := env.write.Execute(ctx, map[string]any{"path": "b.txt", "content": "y"})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "quota exceeded")
		assert.NoFileExists(t, filepath.Join(env.root, "b.txt"))
	})

	t.Run("escape", func(t *testing.T) {
		env := newTestEnv(t, nil)
		res := env.write.Execute(ctx, map[string]any{"path": "/tmp/claw-escape.txt", "content": "x"})
		assert.False(t, res.Success)
		assert.Equal(t, 0, env.policy.Usage().ActionsThisHour)
	})

	t.Run("missing content", func(t *testing.T) {
		env := newTestEnv(t, nil)
		res := env.write.Execute(ctx, map[string]any{"path": "a.txt"})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "content")
	})

	t.Run("binary content", func(t *testing.T) {
		env := newTestEnv(t, nil)
		res := env.write.Execute(ctx, map[string]any{"path": "a.bin", "content": "a\x00b"})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "binary")
	})

	t.Run("too large", func(t *testing.T) {
		env := newTestEnv(t, func(c *config.Config) { c.Tools.MaxFileSize = 2 })
		res := env.write.Execute(ctx, map[string]any{"path": "a.txt", "content": "abc"})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "too large")
	})
}
