package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/apim-labs/punchlist/internal/config"
	"github.com/apim-labs/punchlist/internal/server"
	"github.com/apim-labs/punchlist/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	SeedDemo bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the checklist HTTP server",
		Long: `Start the checklist HTTP server.

The server opens the SQLite database (creating it if it doesn't exist)
and serves the JSON API until interrupted. Listen address and database
path come from PUNCHLIST_* environment variables unless overridden by
flags.

Example:
  punchlist serve --db ./punchlist.db
  PUNCHLIST_PORT=9090 punchlist serve --seed-demo`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from PUNCHLIST_DB)")
	cmd.Flags().BoolVar(&opts.SeedDemo, "seed-demo", false, "seed the demo checklist into an empty database")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg := config.Load()
	setupLogging(opts.RootOptions, cfg)

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	seed := opts.SeedDemo || cfg.SeedDemo

	slog.Info("opening database", "path", dbPath, "seed_demo", seed)
	st, err := store.Open(dbPath, store.Options{SeedDemo: seed})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	srv := server.New(st, cfg)

	// Setup signal handling for graceful shutdown. Use the command's
	// context if available (for testing), otherwise create one.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", cfg.ListenAddr())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
