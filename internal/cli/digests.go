package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/store"
)

// DigestsOptions holds flags for the digests command.
type DigestsOptions struct {
	*RootOptions
	Database string
}

// NewDigestsCommand creates the digests listing command.
func NewDigestsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DigestsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "digests",
		Short: "List digests in a database",
		Long: `List every digest stored in a SQLite database, oldest first.

Example:
  tally digests --db ./tally.db
  tally digests --db ./tally.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDigests(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// digestRow is one listing entry in the command's output payload.
type digestRow struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

func listDigests(opts *DigestsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	infos, err := st.ListDigests(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list digests", err)
	}

	rows := make([]digestRow, len(infos))
	for i, info := range infos {
		rows[i] = digestRow{
			ID:        info.ID,
			Timestamp: info.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	if opts.Format == "json" {
		return formatter.Success(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(formatter.Writer, "no digests")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintf(formatter.Writer, "%s  %s\n", row.ID, row.Timestamp)
	}
	return nil
}
