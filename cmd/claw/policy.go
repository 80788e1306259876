package main

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/claw/internal/security"
	"github.com/spf13/cobra"
)

func newPolicyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the security policy",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "classify <command>",
			Short: "Show the risk level and decision for a shell command",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				policy, err := security.NewPolicy(a.workspace, a.cfg.Autonomy)
				if err != nil {
					return err
				}
				auth := policy.AuthorizeCommand(strings.Join(args, " "))
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "risk:     %s\n", auth.Risk)
				fmt.Fprintf(out, "decision: %s\n", auth.Decision)
				if auth.Reason != "" {
					fmt.Fprintf(out, "reason:   %s\n", auth.Reason)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "check-path <path>",
			Short: "Check whether a path may be accessed",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				policy, err := security.NewPolicy(a.workspace, a.cfg.Autonomy)
				if err != nil {
					return err
				}
				resolved, err := policy.ResolvePath(args[0])
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "denied: %v\n", err)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "allowed: %s\n", resolved)
				return nil
			},
		},
	)
	return cmd
}
