package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Cyclone1070/claw/internal/agent"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "run [message]",
		Short: "Run a single turn without the terminal UI",
		Long:  "Run sends one message and prints the final answer. Actions that need approval are denied.",
		Example: `  claw run -m "summarise README.md"
  claw --autonomy full run list the TODOs in this repo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" && len(args) > 0 {
				message = strings.Join(args, " ")
			}
			if message == "" {
				return errors.New("you must specify a message with -m or as arguments")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runOnce(ctx, message)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "message to send")
	return cmd
}

func (a *app) runOnce(ctx context.Context, message string) error {
	p, err := a.deps.ProviderFactory(ctx, a.cfg)
	if err != nil {
		return err
	}

	obs, shutdown, err := newObserver(ctx, a.cfg.Observability.Backend, a.cfg.Agent.Name, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("observer shutdown failed", "error", err)
		}
	}()

	sess, err := agent.New(ctx, agent.Options{
		Config:    a.cfg,
		Workspace: a.workspace,
		Provider:  p,
		Observer:  obs,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.Send(ctx, message)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.deps.Stdout, res.Text)
	return nil
}
