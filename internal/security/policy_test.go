package security

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAutonomy() config.AutonomyConfig {
	return config.DefaultConfig().Autonomy
}

func newTestPolicy(t *testing.T, mutate func(*config.AutonomyConfig)) *Policy {
	t.Helper()
	cfg := testAutonomy()
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := NewPolicy(t.TempDir(), cfg)
	require.NoError(t, err)
	return p
}

func TestNewPolicy_RejectsMissingRoot(t *testing.T) {
	_, err := NewPolicy(filepath.Join(t.TempDir(), "missing"), testAutonomy())
	assert.Error(t, err)
}

func TestNewPolicy_RejectsUnknownLevel(t *testing.T) {
	cfg := testAutonomy()
	cfg.Level = "root"
	_, err := NewPolicy(t.TempDir(), cfg)
	assert.ErrorIs(t, err, ErrUnknownAutonomyLevel)
}

func TestResolvePath_InsideWorkspace(t *testing.T) {
	p := newTestPolicy(t, nil)
	root := p.WorkspaceRoot()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))

	got, err := p.ResolvePath("a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.txt"), got)

	got, err = p.ResolvePath(filepath.Join(root, "sub", "..", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.txt"), got)

	// Files that do not exist yet resolve under the root.
	got, err = p.ResolvePath("new/dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "new", "dir", "file.txt"), got)

	assert.True(t, p.IsPathAllowed("."))
}

func TestResolvePath_Denied(t *testing.T) {
	p := newTestPolicy(t, nil)
	root := p.WorkspaceRoot()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret"), []byte("s"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))

	tests := []struct {
		name string
		path string
	}{
		{"parent escape", "../etc/passwd"},
		{"absolute outside", "/etc/passwd"},
		{"symlink escape", "link/secret"},
		{"symlink escape to new file", "link/new.txt"},
		{"null byte", "a\x00b"},
		{"empty", "  "},
		{"forbidden dir", ".git"},
		{"inside forbidden dir", ".git/config"},
		{"forbidden file", ".env"},
		{"forbidden glob", "certs/server.pem"},
		{"forbidden prefix glob", "id_rsa.pub"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ResolvePath(tt.path)
			require.Error(t, err)
			var denied *PolicyDeniedError
			assert.True(t, errors.As(err, &denied))
			assert.ErrorIs(t, err, ErrPolicyDenied)
			assert.False(t, p.IsPathAllowed(tt.path))
		})
	}
}

func TestResolvePath_WorkspaceOnlyDisabled(t *testing.T) {
	p := newTestPolicy(t, func(c *config.AutonomyConfig) { c.WorkspaceOnly = false })

	got, err := p.ResolvePath("/etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "/etc/passwd", got)

	got, err = p.ResolvePath("rel.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.WorkspaceRoot(), "rel.txt"), got)
}

func TestAuthorizeCommand(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.AutonomyConfig)
		command string
		want    Decision
		risk    CommandRiskLevel
	}{
		{"empty denied", nil, "   ", Deny, RiskLow},
		{"supervised low allowed", nil, "ls -la", Allow, RiskLow},
		{"supervised medium needs approval", nil, "touch x", RequireApproval, RiskMedium},
		{"supervised high blocked", nil, "rm -rf build", Deny, RiskHigh},
		{"supervised high approval when unblocked", func(c *config.AutonomyConfig) { c.BlockHighRiskCommands = false }, "rm -rf build", RequireApproval, RiskHigh},
		{"supervised medium allowed without flag", func(c *config.AutonomyConfig) { c.RequireApprovalForMediumRisk = false }, "touch x", Allow, RiskMedium},
		{"readonly low allowed", func(c *config.AutonomyConfig) { c.Level = "readonly" }, "git status", Allow, RiskLow},
		{"readonly medium denied", func(c *config.AutonomyConfig) { c.Level = "readonly" }, "touch x", Deny, RiskMedium},
		{"full allows high", func(c *config.AutonomyConfig) { c.Level = "full" }, "rm -rf build", Allow, RiskHigh},
		{"full ignores allowlist", func(c *config.AutonomyConfig) { c.Level = "full"; c.AllowedCommands = []string{"ls"} }, "make", Allow, RiskMedium},
		{"allowlist passes", func(c *config.AutonomyConfig) { c.AllowedCommands = []string{"ls", "grep"} }, "ls | grep a", Allow, RiskLow},
		{"allowlist rejects", func(c *config.AutonomyConfig) { c.AllowedCommands = []string{"ls"} }, "ls && cat x", Deny, RiskLow},
		{"allowlist rejects dynamic", func(c *config.AutonomyConfig) { c.AllowedCommands = []string{"ls"} }, "$CMD", Deny, RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPolicy(t, tt.mutate)
			got := p.AuthorizeCommand(tt.command)
			assert.Equal(t, tt.want, got.Decision, got.Reason)
			if strings.TrimSpace(tt.command) != "" {
				assert.Equal(t, tt.risk, got.Risk)
			}
		})
	}
}

func TestAuthorizeCommand_WrappedHighRiskIsBlocked(t *testing.T) {
	p := newTestPolicy(t, nil)
	for _, command := range []string{
		"nice -n 5 rm -rf ~",
		"timeout -s KILL 5 rm -rf ~",
		"env -u HOME rm -rf ~",
		"echo ~ | xargs -n 1 rm -rf",
		"find ~ -exec rm -rf {} +",
	} {
		got := p.AuthorizeCommand(command)
		assert.Equal(t, Deny, got.Decision, command)
		assert.Equal(t, RiskHigh, got.Risk, command)
	}
}

func TestAuthorizeCommand_ReadOnlyDeniesWritingOptions(t *testing.T) {
	p := newTestPolicy(t, func(c *config.AutonomyConfig) { c.Level = "readonly" })
	for _, command := range []string{
		"sed -n '1e touch pwned' README.md",
		"sed -n 'w out.txt' README.md",
		"sort -o victim.txt /dev/null",
		"uniq in.txt victim.txt",
		"man -P 'touch pwned' ls",
		"rg --pre ./evil.sh x",
		"git diff --output=victim.txt",
		"git grep -O foo",
	} {
		assert.Equal(t, Deny, p.AuthorizeCommand(command).Decision, command)
	}
	assert.Equal(t, Allow, p.AuthorizeCommand("sed -n '1,5p' README.md").Decision)
}

func TestAuthorizeCommand_AllowlistReasonNamesProgram(t *testing.T) {
	p := newTestPolicy(t, func(c *config.AutonomyConfig) { c.AllowedCommands = []string{"ls"} })
	got := p.AuthorizeCommand("ls && cat x")
	assert.Contains(t, got.Reason, `"cat"`)
}

func TestCanMutate(t *testing.T) {
	assert.False(t, newTestPolicy(t, func(c *config.AutonomyConfig) { c.Level = "readonly" }).CanMutate())
	assert.True(t, newTestPolicy(t, nil).CanMutate())
	assert.Equal(t, Supervised, newTestPolicy(t, nil).Level())
}

func TestAuthorizeMutation(t *testing.T) {
	readOnly := newTestPolicy(t, func(c *config.AutonomyConfig) { c.Level = "readonly" })
	err := readOnly.AuthorizeMutation("notes.txt", 0)
	assert.ErrorIs(t, err, ErrPolicyDenied)
	assert.Equal(t, 0, readOnly.Usage().ActionsThisHour)

	limited := newTestPolicy(t, func(c *config.AutonomyConfig) { c.MaxActionsPerHour = 1 })
	require.NoError(t, limited.AuthorizeMutation("a", 0))
	assert.ErrorIs(t, limited.AuthorizeMutation("b", 0), ErrQuotaExceeded)
}
