package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/apim-labs/punchlist/internal/bridge"
	"github.com/apim-labs/punchlist/internal/config"
)

// BridgeOptions holds flags for the bridge command.
type BridgeOptions struct {
	*RootOptions
	BaseURL string
}

// NewBridgeCommand creates the bridge command.
func NewBridgeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BridgeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Run the MCP stdio bridge against a running server",
		Long: `Run the MCP stdio bridge.

The bridge reads Content-Length framed JSON-RPC messages from stdin and
forwards tool calls to the HTTP server. Point it at a running server via
--base-url or PUNCHLIST_BASE_URL.

Example:
  punchlist bridge --base-url http://127.0.0.1:8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "HTTP server base URL (default from PUNCHLIST_BASE_URL)")

	return cmd
}

func runBridge(opts *BridgeOptions, cmd *cobra.Command) error {
	cfg := config.Load()
	setupLogging(opts.RootOptions, cfg)

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}

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

	slog.Info("mcp bridge starting", "base_url", baseURL)
	b := bridge.New(baseURL, cmd.InOrStdin(), cmd.OutOrStdout())
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "bridge error", err)
	}
	return nil
}
