package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
	"github.com/roach88/tally/container"
	"github.com/roach88/tally/outcome"
	"github.com/roach88/tally/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <plan.cue>",
		Short: "Execute a plan against a fresh container",
		Long: `Execute a CUE plan file against a fresh state container.

Each step applies a built-in action (set, increment, append, drop) or a
replay operation (rerun, reset, retry). Digests are created on the plan's
digest interval; with --db they are persisted to a SQLite database.

Example:
  tally run ./plans/counter.cue
  tally run ./plans/counter.cue --db ./tally.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for digest persistence")

	return cmd
}

// runReport is the run command's output payload.
type runReport struct {
	Plan       string         `json:"plan"`
	Steps      int            `json:"steps"`
	Digests    int            `json:"digests"`
	FinalState map[string]any `json:"final_state"`
}

func runPlan(opts *RunOptions, path string, cmd *cobra.Command) error {
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
	formatter.VerboseLog("plan loaded: %s (%d steps)", plan.Name, len(plan.Steps))

	var persist []container.PersistFunc
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		persist = append(persist, st.Persister())
		formatter.VerboseLog("database ready: %s", opts.Database)
	}

	c, digests, err := executePlan(cmd.Context(), plan, persist, formatter)
	if err != nil {
		return err
	}

	report := runReport{
		Plan:       plan.Name,
		Steps:      len(plan.Steps),
		Digests:    digests,
		FinalState: c.State(),
	}
	if opts.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "plan %s: %d steps applied, %d digests\n", report.Plan, report.Steps, report.Digests)
	return printState(formatter.Writer, report.FinalState)
}

// executePlan runs every plan step against a fresh container. The first
// failed step aborts the run with an ExitError carrying the issue message.
// Returns the container and the number of digests created.
func executePlan(ctx context.Context, plan *Plan, persist []container.PersistFunc, formatter *OutputFormatter) (*container.Container, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	logLevel := slog.LevelWarn
	if formatter.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	c, err := container.New(tally.State(plan.Initial),
		container.WithLedger(action.NewLedger()),
		container.WithDigestInterval(plan.DigestInterval),
		container.WithLogger(logger))
	if err != nil {
		return nil, 0, WrapExitError(ExitCommandError, "failed to create container", err)
	}

	// With a persist callback the local digest list stays empty (the store
	// owns the copies), so persisted digests are counted at the callback.
	persisted := 0
	counted := make([]container.PersistFunc, len(persist))
	for i, cb := range persist {
		counted[i] = func(ctx context.Context, serialized string) (string, error) {
			override, err := cb(ctx, serialized)
			if err == nil {
				persisted++
			}
			return override, err
		}
	}

	for i, step := range plan.Steps {
		out := executePlanStep(ctx, c, step, counted)
		if !out.IsSuccess() {
			iss := out.(*outcome.Issue)
			return nil, 0, NewExitError(ExitFailure,
				fmt.Sprintf("steps[%d] (%s): %s", i, step.Op, iss.Message()))
		}
		formatter.VerboseLog("steps[%d] (%s) ok", i, step.Op)
	}

	return c, len(c.Digests()) + persisted, nil
}

func executePlanStep(ctx context.Context, c *container.Container, step PlanStep, persist []container.PersistFunc) outcome.Outcome {
	switch step.Op {
	case "add":
		act := action.New(c.Ledger(), step.Action, step.Params, Builtins[step.Action])
		return c.Add(ctx, act, c.State(), persist...)
	case "rerun":
		return c.Rerun(ctx, *step.Index, tally.State(nil), persist...)
	case "reset":
		return c.Reset(ctx, c.State(), persist...)
	case "retry":
		return c.Retry(ctx, c.State(), persist...)
	default:
		// Unreachable after schema validation.
		return outcome.FromMessage(fmt.Sprintf("unknown op %q", step.Op))
	}
}

// printState renders state as indented JSON for the text format.
func printState(w io.Writer, state map[string]any) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return WrapExitError(ExitFailure, "failed to render state", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
