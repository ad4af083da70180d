package outcome

import (
	"fmt"
	"time"

	"github.com/roach88/tally/action"
)

// Issue records a failed action execution. It carries the captured errors
// and a human-readable message, and is itself an error value, so it can flow
// through error-shaped plumbing while remaining branchable data.
type Issue struct {
	id            string
	correlationID string
	name          string
	message       string
	errs          []error
	act           *action.Action
	failedResult  *ResultRecord
	timestamp     time.Time
	execTime      time.Duration
	execKnown     bool
}

// FromAction wraps a failure raised while executing act. Non-error causes
// (panic values and the like) are coerced into errors via stringification.
// A nil act is allowed for container-level failures with no originating
// action.
func FromAction(act *action.Action, cause any, opts ...Option) *Issue {
	s := applyOptions(opts)
	err := coerceError(cause)
	iss := &Issue{
		id:        s.gen.Generate(),
		message:   err.Error(),
		errs:      []error{err},
		act:       act,
		timestamp: s.timestamp,
	}
	iss.execTime, iss.execKnown = executionTime(act, s.timestamp)
	if act != nil {
		iss.correlationID = act.CorrelationID()
		iss.name = act.Name()
	}
	return iss
}

// FromMessage builds an Issue carrying only a message, for lookup-style
// failures (invalid rerun index, nothing to reset) that have no underlying
// error chain beyond the message itself.
func FromMessage(message string, opts ...Option) *Issue {
	return FromAction(nil, message, opts...)
}

// FromResultRecord converts a failed result record into an Issue. The
// success flag lives on the wire form; converting a record that claims
// success is a programming-contract violation and fails fast here.
func FromResultRecord(rec ResultRecord, opts ...Option) (*Issue, error) {
	if rec.Success {
		return nil, fmt.Errorf("outcome: cannot build an issue from a successful result (id %s)", rec.ID)
	}
	s := applyOptions(opts)
	iss := &Issue{
		id:            s.gen.Generate(),
		correlationID: rec.CorrelationID,
		name:          rec.Action.Name,
		failedResult:  &rec,
		timestamp:     s.timestamp,
	}
	if rec.ExecutionTime != nil {
		iss.execTime = time.Duration(*rec.ExecutionTime) * time.Millisecond
		iss.execKnown = true
	}
	for _, er := range rec.Errors {
		iss.errs = append(iss.errs, er.toError())
	}
	if len(iss.errs) == 0 {
		iss.errs = []error{fmt.Errorf("action %q failed", rec.Action.Name)}
	}
	iss.message = iss.errs[0].Error()
	return iss, nil
}

// IsSuccess is always false for an Issue.
func (i *Issue) IsSuccess() bool { return false }

// OutcomeID returns the issue's unique id.
func (i *Issue) OutcomeID() string { return i.id }

// Correlation returns the correlation id inherited from the action.
func (i *Issue) Correlation() string { return i.correlationID }

// Errors returns the captured errors; never empty.
func (i *Issue) Errors() []error {
	return append([]error(nil), i.errs...)
}

// Name returns the originating action's name, empty for container-level
// failures.
func (i *Issue) Name() string { return i.name }

// Message returns the human-readable failure text. When auxiliary text has
// been registered for this issue's id it is appended after the message.
func (i *Issue) Message() string {
	if extra, ok := IssueText(i.id); ok {
		return i.message + ": " + extra
	}
	return i.message
}

// Action returns the originating action, nil for container-level failures.
func (i *Issue) Action() *action.Action { return i.act }

// FailedResult returns the failed result record this issue was converted
// from, nil otherwise.
func (i *Issue) FailedResult() *ResultRecord { return i.failedResult }

// Timestamp returns when the failure was recorded.
func (i *Issue) Timestamp() time.Time { return i.timestamp }

// ExecutionTime returns outcome timestamp minus action timestamp; zero when
// the timing is unknown.
func (i *Issue) ExecutionTime() time.Duration { return i.execTime }

// Error implements the error interface.
func (i *Issue) Error() string { return i.Message() }

// Unwrap exposes the captured errors to errors.Is and errors.As.
func (i *Issue) Unwrap() []error { return i.errs }

func (i *Issue) sealed() {}

func coerceError(cause any) error {
	switch c := cause.(type) {
	case nil:
		return fmt.Errorf("unknown failure")
	case error:
		return c
	default:
		return fmt.Errorf("%v", c)
	}
}
