package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darshan-rambhia/herald/internal/model"
)

func newProvidersCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers and whether a strategy is configured for each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.closer.Close()

			configured := make(map[model.Provider]bool)
			for _, p := range a.notifier.Configured() {
				configured[p] = true
			}
			for _, p := range model.Providers() {
				state := "not configured"
				if configured[p] {
					state = "configured"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p, state)
			}
			return nil
		},
	}
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.closer.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "config ok: %d provider(s) configured\n", len(a.notifier.Configured()))
			return nil
		},
	}
}
