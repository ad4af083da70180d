package container

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
)

// countingExec returns the number of params as content and records it into
// state under "count".
func countingExec(_ context.Context, _ tally.State, params []any) (action.Effect, error) {
	n := len(params)
	return action.Effect{
		Content: n,
		Transform: func(s tally.State) tally.State {
			return tally.Merge(s, tally.State{"count": n})
		},
	}, nil
}

// addExec adds params[0] (an int) to state["value"].
func addExec(_ context.Context, _ tally.State, params []any) (action.Effect, error) {
	delta := params[0].(int)
	return action.Effect{
		Content: delta,
		Transform: func(s tally.State) tally.State {
			value, _ := s["value"].(int)
			return tally.Merge(s, tally.State{"value": value + delta})
		},
	}, nil
}

var errBoom = errors.New("boom")

func failingExec(context.Context, tally.State, []any) (action.Effect, error) {
	return action.Effect{}, errBoom
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestContainer builds a container with an isolated ledger and silenced
// diagnostics.
func newTestContainer(t *testing.T, initial tally.State, opts ...Option) (*Container, *action.Ledger) {
	t.Helper()
	ledger := action.NewLedger()
	opts = append([]Option{WithLedger(ledger), WithLogger(quietLogger())}, opts...)
	c, err := New(initial, opts...)
	require.NoError(t, err)
	return c, ledger
}
