package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/darshan-rambhia/herald/internal/dispatch"
	"github.com/darshan-rambhia/herald/internal/model"
)

var errDeliveryFailed = errors.New("one or more notifications were not delivered")

func newSendCmd(root *rootOptions) *cobra.Command {
	var (
		providerNames []string
		message       string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message through one or more providers",
		Example: `  herald send -c herald.yml -p email -m "Disk almost full"
  echo "deploy finished" | herald send -c herald.yml -p email -p push`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			providers, err := parseProviders(providerNames)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("message") {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading message from stdin: %w", err)
				}
				message = strings.TrimRight(string(b), "\n")
			}

			a, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.closer.Close()

			results := dispatch.Broadcast(cmd.Context(), a.notifier, providers, message, dispatch.Options{
				Concurrency: a.cfg.Concurrency,
				Timeout:     a.cfg.Timeout.Duration,
				Logger:      a.log,
			})

			out := cmd.OutOrStdout()
			failed := false
			for _, r := range results {
				if !r.OK() {
					failed = true
				}
				if r.Err != nil {
					fmt.Fprintf(out, "%s\terror\t%s\n", r.Provider, r.Err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", r.Provider, r.Outcome)
			}
			if failed {
				return errDeliveryFailed
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&providerNames, "provider", "p", nil, "provider to notify (email, sms, push_notification); repeatable")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message body (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

// parseProviders accepts repeated and comma-separated names and drops duplicates.
func parseProviders(names []string) ([]model.Provider, error) {
	var out []model.Provider
	seen := make(map[model.Provider]bool)
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			p, err := model.ParseProvider(part)
			if err != nil {
				return nil, err
			}
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}
