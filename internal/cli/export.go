package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apim-labs/punchlist/internal/config"
	"github.com/apim-labs/punchlist/internal/markdown"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Output   string
	All      bool
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <checklist>",
		Short: "Export a checklist as a markdown document",
		Long: `Export a checklist as a markdown document.

Writes to stdout unless --output is given. The document round-trips: it
can be re-imported without losing any field or relationship. With --all,
every slug of every checklist is dumped as JSON instead.

Example:
  punchlist export rack-7 > rack-7.md
  punchlist export rack-7 --output rack-7.md
  punchlist export --all > backup.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.All {
				return runExportAll(opts, cmd)
			}
			if len(args) != 1 {
				return NewExitError(ExitCommandError, "export requires a checklist name (or --all)")
			}
			return runExport(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from PUNCHLIST_DB)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.All, "all", false, "dump every slug of every checklist as JSON")

	return cmd
}

func runExportAll(opts *ExportOptions, cmd *cobra.Command) error {
	cfg := config.Load()
	setupLogging(opts.RootOptions, cfg)

	st, err := openStore(opts.Database, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	slugs, err := st.ExportAllSlugs(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read slugs", err)
	}

	data, err := json.MarshalIndent(slugs, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode slugs", err)
	}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write dump", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d slugs to %s\n", len(slugs), opts.Output)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runExport(opts *ExportOptions, cmd *cobra.Command, name string) error {
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

	doc, err := markdown.Export(name, slugs)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to export checklist", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(doc), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write document", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d slugs to %s\n", len(slugs), opts.Output)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), doc)
	return nil
}
