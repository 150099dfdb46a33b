package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apim-labs/punchlist/internal/checklist"
	"github.com/apim-labs/punchlist/internal/config"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database    string
	WithHistory bool
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <address-id>",
		Short: "Show one slug with its relationships",
		Long: `Show one slug with its relationships.

Pass --history to append the slug's audit trail, oldest first.

Example:
  punchlist show 4Q0DG1J8M3VH5Y2K
  punchlist show 4Q0DG1J8M3VH5Y2K --history`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from PUNCHLIST_DB)")
	cmd.Flags().BoolVar(&opts.WithHistory, "history", false, "include the audit trail")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command, addressID string) error {
	cfg := config.Load()
	setupLogging(opts.RootOptions, cfg)

	st, err := openStore(opts.Database, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	slug, err := st.GetSlug(ctx, addressID)
	if err != nil {
		if checklist.IsNotFound(err) {
			return WrapExitError(ExitFailure, "slug not found", err)
		}
		return WrapExitError(ExitCommandError, "failed to read slug", err)
	}

	graph, err := st.Relationships(ctx, addressID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read relationships", err)
	}

	var history []checklist.Slug
	if opts.WithHistory {
		history, err = st.History(ctx, addressID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read history", err)
		}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if f.Format == "json" {
		payload := map[string]any{"slug": slug, "relationships": graph}
		if opts.WithHistory {
			payload["history"] = history
		}
		return f.Success(payload)
	}
	return f.Success(renderSlug(slug, graph, history))
}

func renderSlug(slug checklist.Slug, graph checklist.Graph, history []checklist.Slug) string {
	var out strings.Builder

	fmt.Fprintf(&out, "ID:        %s\n", slug.AddressID)
	fmt.Fprintf(&out, "Checklist: %s\n", slug.Checklist)
	fmt.Fprintf(&out, "Section:   %s\n", slug.Section)
	fmt.Fprintf(&out, "Procedure: %s\n", slug.Procedure)
	fmt.Fprintf(&out, "Action:    %s\n", slug.Action)
	fmt.Fprintf(&out, "Spec:      %s\n", slug.Spec)
	fmt.Fprintf(&out, "Result:    %s\n", slug.Result)
	fmt.Fprintf(&out, "Status:    %s\n", slug.Status)
	fmt.Fprintf(&out, "Comment:   %s\n", slug.Comment)
	fmt.Fprintf(&out, "Timestamp: %s\n", slug.Timestamp)

	if slug.Instructions != "" {
		fmt.Fprintf(&out, "\nInstructions:\n%s\n", slug.Instructions)
	}

	out.WriteString("\nRelationships:\n")
	if len(graph.Outgoing) == 0 && len(graph.Incoming) == 0 {
		out.WriteString("  (none)\n")
	}
	for _, edge := range graph.Outgoing {
		fmt.Fprintf(&out, "  -> %s %s\n", edge.Predicate, edge.Target)
	}
	for _, edge := range graph.Incoming {
		fmt.Fprintf(&out, "  <- %s %s\n", edge.Predicate, edge.Source)
	}

	if len(history) > 0 {
		out.WriteString("\nHistory:\n")
		for _, snap := range history {
			fmt.Fprintf(&out, "  %s  %-6s %s\n", snap.Timestamp, snap.Status, snap.Comment)
		}
	}

	return strings.TrimRight(out.String(), "\n")
}
