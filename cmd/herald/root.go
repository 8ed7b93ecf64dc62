package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/darshan-rambhia/herald/internal/config"
	"github.com/darshan-rambhia/herald/internal/dispatch"
	"github.com/darshan-rambhia/herald/internal/logging"
	"github.com/darshan-rambhia/herald/internal/notify"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "herald",
		Short:         "Send notifications through email, SMS or push",
		Long:          "herald routes a message to the strategy configured for each requested provider.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to herald.yml config file")

	cmd.AddCommand(
		newSendCmd(opts),
		newProvidersCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// app is everything a command needs after config has been loaded.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	notifier *notify.Notifier
	closer   io.Closer
}

func (o *rootOptions) load(stderr io.Writer) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigFileNotFound) {
			return nil, fmt.Errorf("%w (pass --config with an existing file)", err)
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, closer := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogRotation.MaxSizeMB,
		MaxBackups: cfg.LogRotation.MaxBackups,
		MaxAgeDays: cfg.LogRotation.MaxAgeDays,
		Stderr:     stderr,
	})

	n := notify.New(dispatch.Build(cfg, dispatch.SendersFromConfig(cfg)))
	log.Debug("notifier ready", "providers", n.Configured())

	return &app{cfg: cfg, log: log, notifier: n, closer: closer}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			ver, sha, built, dirty := buildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "herald %s\n  commit:    %s (%s)\n  built:     %s\n  go:        %s\n  platform:  %s/%s\n",
				ver, sha, dirty, built, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
