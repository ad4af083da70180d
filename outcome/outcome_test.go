package outcome

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
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

func TestNewResult_Envelope(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	act := action.New(action.NewLedger(), "count", []any{1, 2}, countingExec,
		action.WithCorrelationID("grp"),
		action.WithTimestamp(created))
	prev := tally.State{"value": 0}
	next := tally.State{"value": 0, "count": 2}

	res := NewResult(act, 2, prev, next,
		WithIDGenerator(action.NewFixedGenerator("res-1")),
		WithTimestamp(created.Add(250*time.Millisecond)))

	assert.True(t, res.IsSuccess())
	assert.Equal(t, "res-1", res.OutcomeID())
	assert.Equal(t, "grp", res.Correlation(), "correlation inherited from action")
	assert.Equal(t, 2, res.Content())
	assert.Same(t, act, res.Action())
	assert.Equal(t, prev, res.PrevState())
	assert.Equal(t, next, res.NextState())
	assert.Empty(t, res.Errors(), "success outcomes always have empty errors")
	assert.Equal(t, 250*time.Millisecond, res.ExecutionTime())
}

func TestFromAction_CapturesError(t *testing.T) {
	act := action.New(action.NewLedger(), "explode", nil, nil, action.WithCorrelationID("grp"))
	boom := errors.New("boom")

	iss := FromAction(act, boom)

	assert.False(t, iss.IsSuccess())
	assert.Equal(t, "explode", iss.Name())
	assert.Equal(t, "grp", iss.Correlation())
	assert.Equal(t, "boom", iss.Message())
	require.Len(t, iss.Errors(), 1)
	assert.ErrorIs(t, iss, boom, "issue unwraps to the captured error")
}

func TestFromAction_CoercesNonError(t *testing.T) {
	iss := FromAction(nil, 42)

	require.Len(t, iss.Errors(), 1)
	assert.Equal(t, "42", iss.Message())
	assert.Empty(t, iss.Name())
}

func TestIssue_IsAnError(t *testing.T) {
	var err error = FromMessage("No actions to reset")
	assert.Equal(t, "No actions to reset", err.Error())
}

func TestFromResultRecord_FailedRecord(t *testing.T) {
	rec := ResultRecord{
		ID:      "res-9",
		Success: false,
		Errors:  []ErrorRecord{{Message: "downstream timeout"}},
		Action:  ActionRef{ID: "act-9", Name: "sync"},
	}

	iss, err := FromResultRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, "sync", iss.Name())
	assert.Equal(t, "downstream timeout", iss.Message())
	require.NotNil(t, iss.FailedResult())
	assert.Equal(t, "res-9", iss.FailedResult().ID)
}

func TestFromResultRecord_SuccessFailsFast(t *testing.T) {
	_, err := FromResultRecord(ResultRecord{ID: "res-1", Success: true})
	assert.Error(t, err)
}

func TestCodeAndIssueTextTables(t *testing.T) {
	SetCodeText("E_TIMEOUT", "the downstream did not answer in time")
	text, ok := CodeText("E_TIMEOUT")
	assert.True(t, ok)
	assert.Equal(t, "the downstream did not answer in time", text)

	_, ok = CodeText("E_UNKNOWN")
	assert.False(t, ok)

	iss := FromAction(nil, "boom", WithIDGenerator(action.NewFixedGenerator("iss-1")))
	SetIssueText("iss-1", "retry after the maintenance window")
	assert.Equal(t, "boom: retry after the maintenance window", iss.Message())
	assert.Equal(t, iss.Message(), iss.Error())
}
