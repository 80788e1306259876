package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T, mutate func(*config.ToolsConfig)) (*Executor, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("executor tests use POSIX commands")
	}
	cfg := config.DefaultConfig().Tools
	cfg.GracefulShutdownMs = 100
	if mutate != nil {
		mutate(&cfg)
	}
	root := t.TempDir()
	return New(root, cfg), root
}

func TestRun_CollectsOutput(t *testing.T) {
	exec, _ := newTestExecutor(t, nil)

	res, err := exec.Run(context.Background(), Command{Argv: []string{"sh", "-c", "echo hello; echo oops >&2"}})

	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(res.Stdout))
	assert.Equal(t, "oops", strings.TrimSpace(res.Stderr))
	assert.Zero(t, res.ExitCode)
	assert.False(t, res.Truncated)
	assert.Positive(t, res.Duration)
}

func TestRun_EmptyCommand(t *testing.T) {
	exec, _ := newTestExecutor(t, nil)

	_, err := exec.Run(context.Background(), Command{})

	assert.ErrorIs(t, err, os.ErrInvalid)
}

func TestRun_MissingProgram(t *testing.T) {
	exec, _ := newTestExecutor(t, nil)

	_, err := exec.Run(context.Background(), Command{Argv: []string{"definitely-not-a-program-xyz"}})

	var startErr *StartError
	require.True(t, errors.As(err, &startErr))
	assert.Equal(t, "definitely-not-a-program-xyz", startErr.Program)
}

func TestRun_NonZeroExit(t *testing.T) {
	exec, _ := newTestExecutor(t, nil)

	res, err := exec.Run(context.Background(), Command{Argv: []string{"sh", "-c", "exit 3"}})

	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRun_DefaultsToWorkspaceRoot(t *testing.T) {
	exec, root := newTestExecutor(t, nil)
	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	res, err := exec.Run(context.Background(), Command{Argv: []string{"pwd", "-P"}})
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(res.Stdout))

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	res, err = exec.Run(context.Background(), Command{Argv: []string{"pwd", "-P"}, Dir: sub})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(want, "sub"), strings.TrimSpace(res.Stdout))
}

func TestRun_EnvReplacesEnvironment(t *testing.T) {
	exec, _ := newTestExecutor(t, nil)

	res, err := exec.Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "echo $CLAW_TEST_VAR"},
		Env:  []string{"CLAW_TEST_VAR=set"},
	})

	require.NoError(t, err)
	assert.Equal(t, "set", strings.TrimSpace(res.Stdout))
}

func TestRun_TimeoutKeepsPartialOutput(t *testing.T) {
	exec, _ := newTestExecutor(t, nil)

	res, err := exec.Run(context.Background(), Command{
		Argv:    []string{"sh", "-c", "echo starting; sleep 10"},
		Timeout: 300 * time.Millisecond,
	})

	assert.ErrorIs(t, err, ErrTimeout)
	require.NotNil(t, res)
	assert.Equal(t, -1, res.ExitCode)
	assert.Equal(t, "starting", strings.TrimSpace(res.Stdout))
	assert.Less(t, res.Duration, 5*time.Second)
}

func TestRun_IgnoredInterruptIsKilled(t *testing.T) {
	exec, _ := newTestExecutor(t, nil)

	start := time.Now()
	_, err := exec.Run(context.Background(), Command{
		Argv:    []string{"sh", "-c", "trap '' INT; sleep 10"},
		Timeout: 100 * time.Millisecond,
	})

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_ContextCancelled(t *testing.T) {
	exec, _ := newTestExecutor(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := exec.Run(ctx, Command{Argv: []string{"sleep", "10"}, Timeout: 5 * time.Second})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_LargeOutputKeepsHeadAndTail(t *testing.T) {
	exec, _ := newTestExecutor(t, func(c *config.ToolsConfig) { c.MaxCommandOutputSize = 10 })

	res, err := exec.Run(context.Background(), Command{Argv: []string{"printf", "HEAD-middle-of-the-output-TAIL"}})

	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.True(t, strings.HasPrefix(res.Stdout, "HEAD-"))
	assert.True(t, strings.HasSuffix(res.Stdout, "-TAIL"))
	assert.Contains(t, res.Stdout, "bytes omitted")
}

func TestOutputBuffer(t *testing.T) {
	t.Run("under limit", func(t *testing.T) {
		b := newOutputBuffer(10)
		n, err := b.Write([]byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, "abc", b.String())
		assert.False(t, b.Truncated())
	})

	t.Run("exactly at limit", func(t *testing.T) {
		b := newOutputBuffer(6)
		_, _ = b.Write([]byte("abc"))
		_, _ = b.Write([]byte("def"))
		assert.Equal(t, "abcdef", b.String())
		assert.False(t, b.Truncated())
	})

	t.Run("drops the middle across writes", func(t *testing.T) {
		b := newOutputBuffer(4)
		for _, chunk := range []string{"ab", "cd", "ef", "gh"} {
			_, _ = b.Write([]byte(chunk))
		}
		assert.Equal(t, "ab\n... [4 bytes omitted] ...\ngh", b.String())
		assert.True(t, b.Truncated())
	})

	t.Run("binary", func(t *testing.T) {
		b := newOutputBuffer(10)
		n, _ := b.Write([]byte{'a', 0, 'b'})
		assert.Equal(t, 3, n)
		assert.Equal(t, binaryPlaceholder, b.String())
		assert.True(t, b.Truncated())
	})

	t.Run("no limit", func(t *testing.T) {
		b := newOutputBuffer(0)
		_, _ = b.Write([]byte(strings.Repeat("x", 100)))
		assert.Len(t, b.String(), 100)
		assert.False(t, b.Truncated())
	})
}
