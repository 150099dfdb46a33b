package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/apim-labs/punchlist/internal/config"
	"github.com/apim-labs/punchlist/internal/markdown"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <checklist> <file>",
		Short: "Replace a checklist from a markdown document",
		Long: `Replace a checklist from a markdown document.

The document is parsed and validated in full before anything is written;
a single bad item rejects the whole file. Use "-" to read from stdin.

Example:
  punchlist import rack-7 ./rack-7.md
  cat rack-7.md | punchlist import rack-7 -`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from PUNCHLIST_DB)")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command, name, path string) error {
	cfg := config.Load()
	setupLogging(opts.RootOptions, cfg)

	var content []byte
	var err error
	if path == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read document", err)
	}

	slugs, err := markdown.Parse(name, string(content))
	if err != nil {
		return WrapExitError(ExitFailure, "invalid checklist document", err)
	}

	st, err := openStore(opts.Database, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ReplaceChecklist(cmd.Context(), name, slugs); err != nil {
		return WrapExitError(ExitFailure, "failed to import checklist", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if f.Format == "json" {
		return f.Success(map[string]any{"checklist": name, "imported": len(slugs)})
	}
	return f.Success(fmt.Sprintf("Imported %d slugs into checklist %q", len(slugs), name))
}
