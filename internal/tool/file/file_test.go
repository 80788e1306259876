package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/security"
	"github.com/Cyclone1070/claw/internal/tool/service/fs"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	root   string
	policy *security.Policy
	cfg    config.ToolsConfig
	read   *ReadFileTool
	write  *WriteFileTool
	edit   *EditFileTool
	list   *ListDirectoryTool
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	policy, err := security.NewPolicy(t.TempDir(), cfg.Autonomy)
	require.NoError(t, err)
	ops := fs.NewOSFileSystem()
	return &testEnv{
		root:   policy.WorkspaceRoot(),
		policy: policy,
		cfg:    cfg.Tools,
		read:   NewReadFileTool(ops, policy, cfg.Tools),
		write:  NewWriteFileTool(ops, policy, cfg.Tools),
		edit:   NewEditFileTool(ops, policy, cfg.Tools),
		list:   NewListDirectoryTool(ops, policy),
	}
}

func (e *testEnv) put(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(e.root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (e *testEnv) get(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.root, name))
	require.NoError(t, err)
	return string(data)
}

var ctx = context.Background()
