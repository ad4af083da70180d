package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally"
)

// countingExec returns the number of params as content and records the count
// into state under "count".
func countingExec(_ context.Context, _ tally.State, params []any) (Effect, error) {
	n := len(params)
	return Effect{
		Content: n,
		Transform: func(s tally.State) tally.State {
			return tally.Merge(s, tally.State{"count": n})
		},
	}, nil
}

func TestNew_GeneratesIDAndRegisters(t *testing.T) {
	ledger := NewLedger()

	act := New(ledger, "count", []any{1, 2, 3}, countingExec)

	assert.NotEmpty(t, act.ID())
	assert.Equal(t, "count", act.Name())
	assert.Equal(t, []any{1, 2, 3}, act.Params())
	assert.False(t, act.Timestamp().IsZero())
	assert.True(t, ledger.Has(act.ID()), "factory registers executable under the action id")
}

func TestNew_RedundantCreateSameNameIsNotAnError(t *testing.T) {
	ledger := NewLedger()

	a := New(ledger, "count", nil, countingExec)
	b := New(ledger, "count", nil, countingExec)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.True(t, ledger.Has(a.ID()))
	assert.True(t, ledger.Has(b.ID()))
}

func TestNew_CorrelationID(t *testing.T) {
	act := New(NewLedger(), "count", nil, countingExec, WithCorrelationID("batch-7"))
	assert.Equal(t, "batch-7", act.CorrelationID())
}

func TestNew_FixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("act-1", "act-2")

	a := New(NewLedger(), "x", nil, nil, WithIDGenerator(gen))
	b := New(NewLedger(), "y", nil, nil, WithIDGenerator(gen))

	assert.Equal(t, "act-1", a.ID())
	assert.Equal(t, "act-2", b.ID())
}

func TestParams_CopiedBothWays(t *testing.T) {
	params := []any{1, 2}
	act := New(NewLedger(), "count", params, nil)

	params[0] = 99
	assert.Equal(t, []any{1, 2}, act.Params(), "construction copies params")

	got := act.Params()
	got[1] = 99
	assert.Equal(t, []any{1, 2}, act.Params(), "accessor returns a copy")
}

func TestExecute_NoExecutable(t *testing.T) {
	act := New(NewLedger(), "ghost", nil, nil)

	_, err := act.Execute(context.Background(), tally.State{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.False(t, act.Implemented())
}

func TestExecute_RunsAttachedLogic(t *testing.T) {
	act := New(NewLedger(), "count", []any{1, 2, 3}, countingExec)

	eff, err := act.Execute(context.Background(), tally.State{"value": 0})

	require.NoError(t, err)
	assert.Equal(t, 3, eff.Content)
	next := eff.Transform(tally.State{"value": 0})
	assert.Equal(t, tally.State{"value": 0, "count": 3}, next)
}

func TestAttach_ReplacesExecutable(t *testing.T) {
	act := New(NewLedger(), "count", nil, nil)
	require.False(t, act.Implemented())

	act.Attach(countingExec)
	require.True(t, act.Implemented())

	// Attach is allowed any number of times.
	act.Attach(func(context.Context, tally.State, []any) (Effect, error) {
		return Effect{Content: "second"}, nil
	})
	eff, err := act.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "second", eff.Content)
}

func TestExecute_PropagatesExecutableError(t *testing.T) {
	boom := errors.New("boom")
	act := New(NewLedger(), "explode", nil,
		func(context.Context, tally.State, []any) (Effect, error) {
			return Effect{}, boom
		})

	_, err := act.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}
