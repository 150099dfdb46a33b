package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apim-labs/punchlist/internal/config"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list [checklist]",
		Short: "List checklists, or the slugs of one checklist",
		Long: `List checklists, or the slugs of one checklist.

Without arguments, prints every checklist name. With a checklist name,
prints its slugs ordered by section, procedure, and action.

Example:
  punchlist list
  punchlist list rack-7`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runListChecklists(opts, cmd)
			}
			return runListSlugs(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from PUNCHLIST_DB)")

	return cmd
}

func runListChecklists(opts *ListOptions, cmd *cobra.Command) error {
	cfg := config.Load()
	setupLogging(opts.RootOptions, cfg)

	st, err := openStore(opts.Database, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	names, err := st.ListChecklists(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list checklists", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if f.Format == "json" {
		return f.Success(map[string]any{"checklists": names})
	}
	if len(names) == 0 {
		return f.Success("No checklists.")
	}
	return f.Success(strings.Join(names, "\n"))
}

func runListSlugs(opts *ListOptions, cmd *cobra.Command, name string) error {
	cfg := config.Load()
	setupLogging(opts.RootOptions, cfg)

	st, err := openStore(opts.Database, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	slugs, err := st.GetSlugsForChecklist(cmd.Context(), name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read checklist", err)
	}
	if len(slugs) == 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("checklist not found: %s", name))
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if f.Format == "json" {
		return f.Success(map[string]any{"checklist": name, "slugs": slugs})
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSECTION\tPROCEDURE")
	for _, slug := range slugs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", slug.AddressID, slug.Status, slug.Section, slug.Procedure)
	}
	return w.Flush()
}
