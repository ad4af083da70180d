package outcome

import (
	"time"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
)

// Result records a successful action execution: the content the executable
// produced, the state before and after, and timing. Results are created once
// and never mutated.
type Result struct {
	id            string
	correlationID string
	content       any
	act           *action.Action
	prevState     tally.State
	nextState     tally.State
	timestamp     time.Time
	execTime      time.Duration
	execKnown     bool
}

// NewResult wraps a successful execution. The correlation id is inherited
// from the action; execution time is derived from the gap between the
// action's creation and this outcome, and stays unknown without an action.
func NewResult(act *action.Action, content any, prev, next tally.State, opts ...Option) *Result {
	s := applyOptions(opts)
	r := &Result{
		id:        s.gen.Generate(),
		content:   content,
		act:       act,
		prevState: prev,
		nextState: next,
		timestamp: s.timestamp,
	}
	r.execTime, r.execKnown = executionTime(act, s.timestamp)
	if act != nil {
		r.correlationID = act.CorrelationID()
	}
	return r
}

// IsSuccess is always true for a Result.
func (r *Result) IsSuccess() bool { return true }

// OutcomeID returns the result's unique id.
func (r *Result) OutcomeID() string { return r.id }

// Correlation returns the correlation id inherited from the action.
func (r *Result) Correlation() string { return r.correlationID }

// Errors is always empty for a Result.
func (r *Result) Errors() []error { return nil }

// Content returns the value the executable produced.
func (r *Result) Content() any { return r.content }

// Action returns the originating action.
func (r *Result) Action() *action.Action { return r.act }

// PrevState returns the state the action ran against.
func (r *Result) PrevState() tally.State { return r.prevState }

// NextState returns the state the transform produced, nil for content-only
// effects.
func (r *Result) NextState() tally.State { return r.nextState }

// Timestamp returns when the outcome was recorded.
func (r *Result) Timestamp() time.Time { return r.timestamp }

// ExecutionTime returns outcome timestamp minus action timestamp; zero when
// the timing is unknown (no originating action).
func (r *Result) ExecutionTime() time.Duration { return r.execTime }

func (r *Result) sealed() {}
