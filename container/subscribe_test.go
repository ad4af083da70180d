package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
)

func TestSubscribe_NotifiedAfterStateChange(t *testing.T) {
	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()

	var gotName string
	var gotState tally.State
	c.Subscribe(func(_ context.Context, act *action.Action, newState tally.State) error {
		gotName = act.Name()
		gotState = newState
		return nil
	})

	out := c.Add(ctx, action.New(ledger, "add", []any{3}, addExec), c.State())

	require.True(t, out.IsSuccess())
	assert.Equal(t, "add", gotName)
	assert.Equal(t, 3, gotState["value"])
}

func TestSubscribe_NotNotifiedOnFailure(t *testing.T) {
	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()

	calls := 0
	c.Subscribe(func(context.Context, *action.Action, tally.State) error {
		calls++
		return nil
	})

	c.Add(ctx, action.New(ledger, "fail", nil, failingExec), c.State())
	assert.Zero(t, calls)
}

func TestSubscribe_NotNotifiedOnRerun(t *testing.T) {
	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()
	c.Add(ctx, action.New(ledger, "add", []any{1}, addExec), c.State())

	calls := 0
	c.Subscribe(func(context.Context, *action.Action, tally.State) error {
		calls++
		return nil
	})

	out := c.Rerun(ctx, 0, tally.State{"value": 0})
	require.True(t, out.IsSuccess())
	assert.Zero(t, calls, "replay is reconstruction, not new activity")
}

func TestSubscribe_FailuresAreSwallowed(t *testing.T) {
	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()

	second := 0
	c.Subscribe(func(context.Context, *action.Action, tally.State) error {
		return errBoom
	})
	c.Subscribe(func(context.Context, *action.Action, tally.State) error {
		panic("observer bug")
	})
	c.Subscribe(func(context.Context, *action.Action, tally.State) error {
		second++
		return nil
	})

	out := c.Add(ctx, action.New(ledger, "add", []any{1}, addExec), c.State())

	require.True(t, out.IsSuccess(), "observer failures never fail the operation")
	assert.Equal(t, 1, second, "later observers still run")
}

func TestSubscribe_SnapshotIsolation(t *testing.T) {
	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()

	c.Subscribe(func(_ context.Context, _ *action.Action, newState tally.State) error {
		newState["value"] = 999 // a misbehaving observer scribbles on its copy
		return nil
	})

	c.Add(ctx, action.New(ledger, "add", []any{1}, addExec), c.State())
	assert.Equal(t, 1, c.State()["value"])
}

func TestWatch_FilterGatesObserver(t *testing.T) {
	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()

	var seen []string
	c.Watch(func(act *action.Action, _ tally.State) bool {
		return act.Name() == "interesting"
	}, func(_ context.Context, act *action.Action, _ tally.State) error {
		seen = append(seen, act.Name())
		return nil
	})

	c.Add(ctx, action.New(ledger, "boring", []any{1}, addExec), c.State())
	c.Add(ctx, action.New(ledger, "interesting", []any{1}, addExec), c.State())
	c.Add(ctx, action.New(ledger, "boring", []any{1}, addExec), c.State())

	assert.Equal(t, []string{"interesting"}, seen)
}

func TestExprFilter_MatchesActionAndState(t *testing.T) {
	filter, err := ExprFilter(`action.name == "add" && state.value > 2`)
	require.NoError(t, err)

	c, ledger := newTestContainer(t, tally.State{"value": 0})
	ctx := context.Background()

	calls := 0
	c.Watch(filter, func(context.Context, *action.Action, tally.State) error {
		calls++
		return nil
	})

	c.Add(ctx, action.New(ledger, "add", []any{1}, addExec), c.State()) // value 1: no
	c.Add(ctx, action.New(ledger, "add", []any{1}, addExec), c.State()) // value 2: no
	c.Add(ctx, action.New(ledger, "add", []any{1}, addExec), c.State()) // value 3: yes

	assert.Equal(t, 1, calls)
}

func TestExprFilter_CompileError(t *testing.T) {
	_, err := ExprFilter(`action.name ==`)
	assert.Error(t, err)
}

func TestExprFilter_UndefinedVariablesRejectQuietly(t *testing.T) {
	filter, err := ExprFilter(`state.no_such_key == "x"`)
	require.NoError(t, err)

	assert.False(t, filter(nil, tally.State{"value": 1}))
}
