package outcome

import (
	"context"
	"errors"
	"time"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
	"github.com/roach88/tally/hooks"
)

// ActionRef is the slimmed action reference embedded in outcome records.
type ActionRef struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Params        []any  `json:"params"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ErrorRecord is the serialized form of a captured error.
type ErrorRecord struct {
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
}

func (e ErrorRecord) toError() error {
	return errors.New(e.Message)
}

// ResultRecord is the wire form of an outcome. The success flag is explicit
// here (the in-memory union encodes it in the type); failed records are the
// input to FromResultRecord.
type ResultRecord struct {
	ID            string        `json:"id"`
	CorrelationID string        `json:"correlationId,omitempty"`
	Success       bool          `json:"success"`
	Content       any           `json:"content"`
	Errors        []ErrorRecord `json:"errors"`
	Action        ActionRef     `json:"action"`
	PrevState     tally.State   `json:"prevState"`
	NextState     tally.State   `json:"nextState"`
	Timestamp     time.Time     `json:"timestamp"`
	ExecutionTime *int64        `json:"executionTime"` // milliseconds
}

// IssueRecord is the wire form of an Issue.
type IssueRecord struct {
	ID            string        `json:"id"`
	CorrelationID string        `json:"correlationId,omitempty"`
	Name          string        `json:"name"`
	Message       string        `json:"message"`
	Errors        []ErrorRecord `json:"errors"`
	Action        ActionRef     `json:"action"`
	Result        *ResultRecord `json:"result"`
	Timestamp     time.Time     `json:"timestamp"`
	ExecutionTime *int64        `json:"executionTime"` // milliseconds
}

func actionRef(act *action.Action) ActionRef {
	if act == nil {
		return ActionRef{}
	}
	return ActionRef{
		ID:            act.ID(),
		Name:          act.Name(),
		Params:        act.Params(),
		CorrelationID: act.CorrelationID(),
	}
}

// millis renders a duration as wire milliseconds; unknown timing is null.
func millis(d time.Duration, known bool) *int64 {
	if !known {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

// ToRecord serializes the result. Success results always carry an empty
// (non-null) errors list.
func (r *Result) ToRecord() ResultRecord {
	return ResultRecord{
		ID:            r.id,
		CorrelationID: r.correlationID,
		Success:       true,
		Content:       r.content,
		Errors:        []ErrorRecord{},
		Action:        actionRef(r.act),
		PrevState:     r.prevState,
		NextState:     r.nextState,
		Timestamp:     r.timestamp,
		ExecutionTime: millis(r.execTime, r.execKnown),
	}
}

// ToRecord serializes the issue. Content is always null on the wire; the
// failed result record is carried when the issue was converted from one.
func (i *Issue) ToRecord() IssueRecord {
	errs := make([]ErrorRecord, 0, len(i.errs))
	for _, err := range i.errs {
		errs = append(errs, ErrorRecord{Message: err.Error()})
	}
	return IssueRecord{
		ID:            i.id,
		CorrelationID: i.correlationID,
		Name:          i.name,
		Message:       i.message,
		Errors:        errs,
		Action:        actionRef(i.act),
		Result:        i.failedResult,
		Timestamp:     i.timestamp,
		ExecutionTime: millis(i.execTime, i.execKnown),
	}
}

// ResultFromRecord reconstructs a Result from its wire form. The embedded
// action reference is rebuilt through the ledger (stub-attached when its
// logic is gone, same contract as action.FromRecord). Records claiming
// failure are rejected; those belong to FromResultRecord.
//
// The dispatcher's before-deserialize-state and after-deserialize-state
// points fire around the state restoration; a nil dispatcher skips both.
func ResultFromRecord(ctx context.Context, ledger *action.Ledger, rec ResultRecord, d *hooks.Dispatcher, opts ...Option) (*Result, error) {
	if !rec.Success {
		return nil, errors.New("outcome: record is a failure, not a result")
	}
	if rec.ID == "" {
		return nil, &action.StructureError{Field: "id", Message: "required"}
	}

	d.Fire(ctx, hooks.BeforeDeserializeState, rec.PrevState, rec.NextState)

	act, err := action.FromRecord(ledger, action.Record{
		ID:            rec.Action.ID,
		Name:          rec.Action.Name,
		Params:        rec.Action.Params,
		CorrelationID: rec.Action.CorrelationID,
	}, actionOpts(opts)...)
	if err != nil {
		return nil, err
	}

	res := &Result{
		id:            rec.ID,
		correlationID: rec.CorrelationID,
		content:       rec.Content,
		act:           act,
		prevState:     rec.PrevState,
		nextState:     rec.NextState,
		timestamp:     rec.Timestamp,
	}
	if rec.ExecutionTime != nil {
		res.execTime = time.Duration(*rec.ExecutionTime) * time.Millisecond
		res.execKnown = true
	}

	d.Fire(ctx, hooks.AfterDeserializeState, res.prevState, res.nextState)
	return res, nil
}

// actionOpts projects outcome options onto action construction so a fixed id
// generator threads through to the rebuilt action.
func actionOpts(opts []Option) []action.Option {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.gen == nil {
		return nil
	}
	return []action.Option{action.WithIDGenerator(s.gen)}
}
