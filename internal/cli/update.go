package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apim-labs/punchlist/internal/checklist"
	"github.com/apim-labs/punchlist/internal/config"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Database  string
	Result    string
	Status    string
	Comment   string
	Timestamp string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <address-id>",
		Short: "Update a slug's outcome fields",
		Long: `Update a slug's outcome fields.

Only the flags you pass are changed; everything else is left alone. The
update is stamped with the current UTC time unless --timestamp is given,
and every update is appended to the slug's history.

Example:
  punchlist update 4Q0DG1J8M3VH5Y2K --status pass --result "24.1V"
  punchlist update 4Q0DG1J8M3VH5Y2K --comment "retested after fix"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from PUNCHLIST_DB)")
	cmd.Flags().StringVar(&opts.Result, "result", "", "observed outcome")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Pass, Fail, NA, or Other")
	cmd.Flags().StringVar(&opts.Comment, "comment", "", "free-form note")
	cmd.Flags().StringVar(&opts.Timestamp, "timestamp", "", "ISO-8601 UTC timestamp (default: now)")

	return cmd
}

func runUpdate(opts *UpdateOptions, cmd *cobra.Command, addressID string) error {
	cfg := config.Load()
	setupLogging(opts.RootOptions, cfg)

	upd := checklist.Update{AddressID: addressID}
	flags := cmd.Flags()
	if flags.Changed("result") {
		upd.Result = &opts.Result
	}
	if flags.Changed("comment") {
		upd.Comment = &opts.Comment
	}
	if flags.Changed("timestamp") {
		upd.Timestamp = &opts.Timestamp
	}
	if flags.Changed("status") {
		status := checklist.ParseStatus(opts.Status)
		if status == checklist.StatusUnknown {
			return NewExitError(ExitFailure,
				fmt.Sprintf("status must be Pass, Fail, NA, or Other, got %q", opts.Status))
		}
		upd.Status = &status
	}
	if upd.Result == nil && upd.Comment == nil && upd.Timestamp == nil && upd.Status == nil {
		return NewExitError(ExitCommandError, "nothing to update: pass at least one of --result, --status, --comment, --timestamp")
	}

	st, err := openStore(opts.Database, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := st.ApplyUpdate(ctx, upd); err != nil {
		if checklist.IsNotFound(err) {
			return WrapExitError(ExitFailure, "slug not found", err)
		}
		return WrapExitError(ExitCommandError, "failed to apply update", err)
	}

	slug, err := st.GetSlug(ctx, addressID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read slug back", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if f.Format == "json" {
		return f.Success(slug)
	}
	return f.Success(fmt.Sprintf("Updated %s: status=%s result=%q", slug.AddressID, slug.Status, slug.Result))
}
