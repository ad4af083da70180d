package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tally"
	"github.com/roach88/tally/outcome"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	To int
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <plan.cue>",
		Short: "Run a plan, then replay a history prefix",
		Long: `Execute a plan, then rerun history entries [0..N] from an empty base
and print the reconstructed state. This answers "what did state look like
after step N" without hand-editing the plan.

Example:
  tally replay ./plans/counter.cue --to 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return replayPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.To, "to", 0, "history index to replay up to (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// replayReport is the replay command's output payload.
type replayReport struct {
	Plan          string         `json:"plan"`
	ReplayedTo    int            `json:"replayed_to"`
	FinalState    map[string]any `json:"final_state"`
	ReplayedState map[string]any `json:"replayed_state"`
}

func replayPlan(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	plan, err := LoadPlan(path)
	if err != nil {
		return err
	}

	c, _, err := executePlan(cmd.Context(), plan, nil, formatter)
	if err != nil {
		return err
	}
	finalState := c.State()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := c.Rerun(ctx, opts.To, tally.State(nil))
	if !out.IsSuccess() {
		iss := out.(*outcome.Issue)
		return NewExitError(ExitFailure, fmt.Sprintf("replay to %d: %s", opts.To, iss.Message()))
	}

	report := replayReport{
		Plan:          plan.Name,
		ReplayedTo:    opts.To,
		FinalState:    finalState,
		ReplayedState: c.State(),
	}
	if opts.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "plan %s replayed to index %d\n", report.Plan, report.ReplayedTo)
	return printState(formatter.Writer, report.ReplayedState)
}
