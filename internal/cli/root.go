// Package cli implements the mirror command line.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/rpggio/authoring-mirror/internal/app"
	"github.com/rpggio/authoring-mirror/internal/config"
	"github.com/spf13/cobra"
)

// options are shared by every subcommand.
type options struct {
	dbPath   string
	logLevel string
	stderr   io.Writer
}

// open loads configuration, applies flag overrides and opens the store.
func (o *options) open() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DB.Path = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger := slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.Log.Level),
	}))
	return app.Open(cfg.DB.Path, logger)
}

// NewRootCommand returns the mirror command tree.
func NewRootCommand(ctx context.Context) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "mirror",
		Short:         "Replay authoring activity logs into a local branch store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.stderr = cmd.ErrOrStderr()
		},
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "",
		"Path to the SQLite database. Overrides MIRROR_DB_PATH.")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"Log level: debug, info, warn or error. Overrides MIRROR_LOG_LEVEL.")

	root.AddCommand(
		NewReplayRunner(ctx, opts).Command,
		NewBranchesRunner(ctx, opts).Command,
	)
	return root
}
