package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/digest"
	"github.com/roach88/tally/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Raw      bool
}

// NewShowCommand creates the digest inspection command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <digest-id>",
		Short: "Show a stored digest",
		Long: `Print a digest from a SQLite database: its snapshot state and the
serialized action history.

With --raw the canonical serialized form is printed byte for byte, which is
useful for diffing two digests.

Example:
  tally show 0195a9c2-... --db ./tally.db
  tally show 0195a9c2-... --db ./tally.db --raw`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showDigest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "print the canonical serialized form")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showDigest(opts *ShowOptions, id string, cmd *cobra.Command) error {
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

	body, err := st.LoadDigest(cmd.Context(), id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load digest", err)
	}
	if body == "" {
		return NewExitError(ExitCommandError, fmt.Sprintf("digest not found: %s", id))
	}

	if opts.Raw {
		fmt.Fprintln(formatter.Writer, body)
		return nil
	}

	d, err := digest.Parse(body)
	if err != nil {
		return WrapExitError(ExitCommandError, "stored digest is malformed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(d.Record())
	}

	fmt.Fprintf(formatter.Writer, "digest %s (%s)\n", d.ID, d.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(formatter.Writer, "history: %d actions\n", len(d.History))
	for i, rec := range d.History {
		fmt.Fprintf(formatter.Writer, "  [%d] %s %v\n", i, rec.Name, rec.Params)
	}
	fmt.Fprintln(formatter.Writer, "state:")
	data, err := json.MarshalIndent(d.State, "  ", "  ")
	if err != nil {
		return WrapExitError(ExitFailure, "failed to render state", err)
	}
	fmt.Fprintf(formatter.Writer, "  %s\n", data)
	return nil
}
