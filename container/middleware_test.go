package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
)

func TestUse_RunsBeforeInvocation(t *testing.T) {
	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()

	var order []string
	c.Use(func(_ context.Context, act *action.Action) error {
		order = append(order, "middleware:"+act.Name())
		return nil
	})

	exec := func(_ context.Context, s tally.State, params []any) (action.Effect, error) {
		order = append(order, "exec")
		return addExec(ctx, s, params)
	}
	out := c.Add(ctx, action.New(ledger, "add", []any{1}, exec), c.State())

	require.True(t, out.IsSuccess())
	assert.Equal(t, []string{"middleware:add", "exec"}, order)
}

func TestUse_RunsForFailedActionsToo(t *testing.T) {
	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()

	calls := 0
	c.Use(func(context.Context, *action.Action) error {
		calls++
		return nil
	})

	c.Add(ctx, action.New(ledger, "fail", nil, failingExec), c.State())
	assert.Equal(t, 1, calls, "interception happens before the outcome is known")
}

func TestUse_CannotVetoExecution(t *testing.T) {
	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()

	c.Use(func(context.Context, *action.Action) error {
		return errBoom
	})
	c.Use(func(context.Context, *action.Action) error {
		panic("middleware bug")
	})

	out := c.Add(ctx, action.New(ledger, "add", []any{1}, addExec), c.State())

	require.True(t, out.IsSuccess())
	assert.Equal(t, 1, c.State()["value"])
}

func TestUse_FilterSeesNilState(t *testing.T) {
	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()

	var filterStates []tally.State
	calls := 0
	c.Use(func(context.Context, *action.Action) error {
		calls++
		return nil
	}, func(act *action.Action, newState tally.State) bool {
		filterStates = append(filterStates, newState)
		return act.Name() == "tracked"
	})

	c.Add(ctx, action.New(ledger, "tracked", []any{1}, addExec), c.State())
	c.Add(ctx, action.New(ledger, "other", []any{1}, addExec), c.State())

	assert.Equal(t, 1, calls)
	require.Len(t, filterStates, 2)
	assert.Nil(t, filterStates[0], "state is unknown before invocation")
	assert.Nil(t, filterStates[1])
}
