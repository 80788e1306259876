package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the chat models available to the API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.deps.ProviderFactory(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			models, err := p.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}
			for _, m := range models {
				marker := " "
				if m.Name == a.cfg.Agent.Model {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t(in %d, out %d tokens)\n", marker, m.Name, m.InputTokenLimit, m.OutputTokenLimit)
			}
			return nil
		},
	}
}
