package action

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally"
)

func noopExec(context.Context, tally.State, []any) (Effect, error) {
	return Effect{}, nil
}

func TestLedger_SetAndGet(t *testing.T) {
	l := NewLedger()

	require.NoError(t, l.Set("X", noopExec))

	exec, err := l.Get("X")
	require.NoError(t, err)
	assert.NotNil(t, exec)
}

func TestLedger_SetDuplicateKey(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Set("X", noopExec))

	err := l.Set("X", noopExec)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestLedger_GetMissingKey(t *testing.T) {
	l := NewLedger()

	_, err := l.Get("Y")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestLedger_SetRejectsEmptyKeyAndNilExec(t *testing.T) {
	l := NewLedger()

	assert.Error(t, l.Set("", noopExec))
	assert.Error(t, l.Set("X", nil))
}

func TestLedger_Has(t *testing.T) {
	l := NewLedger()
	assert.False(t, l.Has("X"))

	require.NoError(t, l.Set("X", noopExec))
	assert.True(t, l.Has("X"))
}

func TestLedger_Rehydrate(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Set("logic", countingExec))

	act := New(l, "count", []any{1}, nil)
	require.False(t, act.Implemented())

	got, err := l.Rehydrate(act, "logic")
	require.NoError(t, err)
	assert.Same(t, act, got)
	assert.True(t, act.Implemented())
}

func TestLedger_RehydrateMissingKey(t *testing.T) {
	l := NewLedger()
	act := New(l, "count", nil, nil)

	_, err := l.Rehydrate(act, "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.False(t, act.Implemented(), "action untouched on failed rehydrate")
}

func TestLedger_KeysSorted(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Set("c", noopExec))
	require.NoError(t, l.Set("a", noopExec))
	require.NoError(t, l.Set("b", noopExec))

	assert.Equal(t, []string{"a", "b", "c"}, l.Keys())
}
