package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/Cyclone1070/claw/internal/config"
)

const defaultGracePeriod = 2 * time.Second

// Result is the outcome of one command.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	Duration  time.Duration
}

// Command is one process to run.
type Command struct {
	Argv []string
	// Dir defaults to the workspace root.
	Dir string
	// Env replaces the process environment when non-nil.
	Env []string
	// Timeout bounds the run in addition to the context. Zero means no limit.
	Timeout time.Duration
}

// Executor runs the helper processes of the tools, inside the workspace
// unless a command names another directory.
type Executor struct {
	root      string
	maxOutput int
	grace     time.Duration
}

// New creates an Executor rooted at workspaceRoot with the output cap and
// shutdown grace period of cfg.
func New(workspaceRoot string, cfg config.ToolsConfig) *Executor {
	grace := time.Duration(cfg.GracefulShutdownMs) * time.Millisecond
	if grace <= 0 {
		grace = defaultGracePeriod
	}
	return &Executor{
		root:      workspaceRoot,
		maxOutput: int(cfg.MaxCommandOutputSize),
		grace:     grace,
	}
}

// Run starts c and waits for it to exit.
//
// When the timeout elapses or ctx is done the process gets an interrupt and is
// killed if it is still running after the grace period. The error is then
// ErrTimeout or the context's error, otherwise the process's exit error. The
// Result holds the output collected either way.
func (e *Executor) Run(ctx context.Context, c Command) (*Result, error) {
	if len(c.Argv) == 0 {
		return nil, os.ErrInvalid
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	stdout := newOutputBuffer(e.maxOutput)
	stderr := newOutputBuffer(e.maxOutput)

	cmd := exec.CommandContext(runCtx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	if cmd.Dir == "" {
		cmd.Dir = e.root
	}
	cmd.Env = c.Env
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = e.grace

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &StartError{Program: c.Argv[0], Cause: err}
	}
	waitErr := cmd.Wait()

	res := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Duration:  time.Since(start),
	}
	switch {
	case ctx.Err() != nil:
		res.ExitCode = -1
		return res, ctx.Err()
	case runCtx.Err() != nil:
		res.ExitCode = -1
		return res, ErrTimeout
	case waitErr != nil:
		res.ExitCode = exitCode(waitErr)
		return res, waitErr
	}
	return res, nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
