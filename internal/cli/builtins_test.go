package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally"
)

func TestBuiltinNames_SortedAndComplete(t *testing.T) {
	assert.Equal(t, []string{"append", "drop", "increment", "set"}, BuiltinNames())
}

func TestSetExec(t *testing.T) {
	effect, err := setExec(context.Background(), nil, []any{"mode", "active"})
	require.NoError(t, err)

	next := effect.Transform(tally.State{"other": 1})
	assert.Equal(t, "active", next["mode"])
	assert.Equal(t, 1, next["other"])
	assert.Equal(t, "active", effect.Content)
}

func TestSetExec_BadParams(t *testing.T) {
	_, err := setExec(context.Background(), nil, []any{"only-key"})
	assert.Error(t, err)

	_, err = setExec(context.Background(), nil, []any{42, "value"})
	assert.Error(t, err)
}

func TestIncrementExec(t *testing.T) {
	effect, err := incrementExec(context.Background(), nil, []any{"count", 3})
	require.NoError(t, err)

	next := effect.Transform(tally.State{"count": 4})
	assert.Equal(t, 7, next["count"])

	// Missing key counts as zero.
	next = effect.Transform(tally.State{})
	assert.Equal(t, 3, next["count"])
}

func TestIncrementExec_FractionalResultStaysFloat(t *testing.T) {
	effect, err := incrementExec(context.Background(), nil, []any{"ratio", 0.5})
	require.NoError(t, err)

	next := effect.Transform(tally.State{"ratio": 1})
	assert.Equal(t, 1.5, next["ratio"])
}

func TestIncrementExec_NonNumericDelta(t *testing.T) {
	_, err := incrementExec(context.Background(), nil, []any{"count", "three"})
	assert.Error(t, err)
}

func TestAppendExec(t *testing.T) {
	effect, err := appendExec(context.Background(), nil, []any{"tags", "new"})
	require.NoError(t, err)

	next := effect.Transform(tally.State{"tags": []any{"old"}})
	assert.Equal(t, []any{"old", "new"}, next["tags"])

	// Missing key creates the list.
	next = effect.Transform(tally.State{})
	assert.Equal(t, []any{"new"}, next["tags"])
}

func TestAppendExec_DoesNotMutateInput(t *testing.T) {
	effect, err := appendExec(context.Background(), nil, []any{"tags", "b"})
	require.NoError(t, err)

	original := tally.State{"tags": []any{"a"}}
	_ = effect.Transform(original)
	assert.Equal(t, []any{"a"}, original["tags"])
}

func TestDropExec(t *testing.T) {
	effect, err := dropExec(context.Background(), nil, []any{"stale"})
	require.NoError(t, err)

	next := effect.Transform(tally.State{"stale": 1, "kept": 2})
	assert.NotContains(t, next, "stale")
	assert.Equal(t, 2, next["kept"])
}

func TestDropExec_DoesNotMutateInput(t *testing.T) {
	effect, err := dropExec(context.Background(), nil, []any{"key"})
	require.NoError(t, err)

	original := tally.State{"key": 1}
	_ = effect.Transform(original)
	assert.Contains(t, original, "key")
}
