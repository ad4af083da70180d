package invoke

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
	"github.com/roach88/tally/outcome"
)

func countingExec(_ context.Context, _ tally.State, params []any) (action.Effect, error) {
	n := len(params)
	return action.Effect{
		Content: n,
		Transform: func(s tally.State) tally.State {
			return tally.Merge(s, tally.State{"count": n})
		},
	}, nil
}

func TestInvoke_Success(t *testing.T) {
	act := action.New(action.NewLedger(), "count", []any{1, 2, 3}, countingExec)
	state := tally.State{"value": 0}

	out := Invoke(context.Background(), act, state)

	res, ok := out.(*outcome.Result)
	require.True(t, ok, "non-throwing executable yields a Result")
	assert.Equal(t, 3, res.Content())
	assert.Equal(t, tally.State{"value": 0}, res.PrevState())
	assert.Equal(t, tally.State{"value": 0, "count": 3}, res.NextState())
	assert.Equal(t, tally.State{"value": 0}, state, "input state is never mutated")
}

func TestInvoke_ContentOnlyEffect(t *testing.T) {
	act := action.New(action.NewLedger(), "peek", nil,
		func(context.Context, tally.State, []any) (action.Effect, error) {
			return action.Effect{Content: "observed"}, nil
		})

	out := Invoke(context.Background(), act, tally.State{"v": 1})

	res, ok := out.(*outcome.Result)
	require.True(t, ok)
	assert.Equal(t, "observed", res.Content())
	assert.Nil(t, res.NextState())
}

func TestInvoke_ExecutableError(t *testing.T) {
	boom := errors.New("boom")
	act := action.New(action.NewLedger(), "explode", nil,
		func(context.Context, tally.State, []any) (action.Effect, error) {
			return action.Effect{}, boom
		}, action.WithCorrelationID("grp"))
	state := tally.State{"value": 7}

	out := Invoke(context.Background(), act, state)

	iss, ok := out.(*outcome.Issue)
	require.True(t, ok, "throwing executable yields an Issue")
	assert.ErrorIs(t, iss, boom)
	assert.Same(t, act, iss.Action())
	assert.Equal(t, "grp", iss.Correlation())
	assert.Equal(t, tally.State{"value": 7}, state)
}

func TestInvoke_ExecutablePanic(t *testing.T) {
	act := action.New(action.NewLedger(), "panic", nil,
		func(context.Context, tally.State, []any) (action.Effect, error) {
			panic("wild panic")
		})

	var out outcome.Outcome
	assert.NotPanics(t, func() {
		out = Invoke(context.Background(), act, tally.State{})
	})

	iss, ok := out.(*outcome.Issue)
	require.True(t, ok)
	assert.Contains(t, iss.Message(), "wild panic")
	require.NotEmpty(t, iss.Errors())
}

func TestInvoke_TransformPanic(t *testing.T) {
	act := action.New(action.NewLedger(), "badtransform", nil,
		func(context.Context, tally.State, []any) (action.Effect, error) {
			return action.Effect{
				Transform: func(tally.State) tally.State {
					panic(errors.New("transform misbehaved"))
				},
			}, nil
		})

	out := Invoke(context.Background(), act, tally.State{})

	iss, ok := out.(*outcome.Issue)
	require.True(t, ok, "errors raised by a misbehaving transform are captured")
	assert.Contains(t, iss.Message(), "transform misbehaved")
}

func TestInvoke_NotImplemented(t *testing.T) {
	act := action.New(action.NewLedger(), "ghost", nil, nil)

	out := Invoke(context.Background(), act, tally.State{})

	iss, ok := out.(*outcome.Issue)
	require.True(t, ok)
	assert.ErrorIs(t, iss, action.ErrNotImplemented)
}

func TestInvoke_ExactlyOneShape(t *testing.T) {
	// An Outcome is always exactly one of the two shapes.
	act := action.New(action.NewLedger(), "count", []any{1}, countingExec)
	out := Invoke(context.Background(), act, tally.State{})

	switch out.(type) {
	case *outcome.Result, *outcome.Issue:
	default:
		t.Fatalf("unexpected outcome shape %T", out)
	}
	assert.True(t, out.IsSuccess())
}
