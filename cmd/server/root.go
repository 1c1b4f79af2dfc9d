package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/GautamAgrawal1/lets-connect/internal/app"
	"github.com/GautamAgrawal1/lets-connect/internal/config"
	"github.com/GautamAgrawal1/lets-connect/internal/log"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	overrides  config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "lets-connect",
		Short:         "Room and signaling relay for browser video meetings",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.yaml")
	flags.StringVar(&opts.overrides.Addr, "addr", "", "HTTP listen address")
	flags.StringVar(&opts.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.overrides.DatabasePath, "db", "", "SQLite database path")
	flags.DurationVar(&opts.overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the relay and REST API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the database schema and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)

	return root
}

func loadConfig(opts *rootOptions) (*config.Config, *zerolog.Logger, error) {
	bootLog := log.New("info", "console")

	cfg, path, err := config.Load(bootLog, opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.UpdateFrom(opts.overrides)

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Debug().Str("config", path).Msg("configuration loaded")
	return &cfg, logger, nil
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", cfg.Addr).Str("version", version).Msg("starting lets-connect")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runMigrate(ctx context.Context, opts *rootOptions) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	st, err := app.OpenStore(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("schema applied")
	return nil
}
