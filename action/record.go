package action

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/roach88/tally"
)

// Record is the serialized form of an Action: data only, no executable.
type Record struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Name          string    `json:"name"`
	Params        []any     `json:"params"`
	Timestamp     time.Time `json:"timestamp"`
}

// ToRecord serializes the action. As a side effect it (re-)registers the
// executable under the action's id, guaranteeing the ledger is populated at
// serialization time even if it was cleared or the action was built with a
// late Attach.
func (a *Action) ToRecord() Record {
	if a.exec != nil && a.ledger != nil && !a.ledger.Has(a.id) {
		_ = a.ledger.Set(a.id, a.exec)
	}
	return Record{
		ID:            a.id,
		CorrelationID: a.correlationID,
		Name:          a.name,
		Params:        a.Params(),
		Timestamp:     a.timestamp,
	}
}

// MarshalJSON serializes the action via ToRecord, side effect included.
func (a *Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToRecord())
}

// Validate checks that the record carries the fields reconstruction needs.
func (r Record) Validate() error {
	if r.ID == "" {
		return &StructureError{Field: "id", Message: "required"}
	}
	if r.Name == "" {
		return &StructureError{Field: "name", Message: "required"}
	}
	return nil
}

// FromRecord reconstructs an Action from its serialized form.
//
// The rebuilt action gets a NEW id (the serialized id is never reused) but
// keeps the record's name, params, correlation id, and timestamp. The ledger
// is consulted under the ORIGINAL serialized id: when found, that executable
// is attached (rehydration); when absent, a warning is logged and a stub is
// attached that always fails with ErrNotImplemented. Deserialized actions are
// always usable as data even when their logic cannot be recovered.
//
// A malformed record (missing id or name) returns a StructureError.
func FromRecord(ledger *Ledger, rec Record, opts ...Option) (*Action, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if ledger == nil {
		ledger = Default()
	}

	exec, err := ledger.Get(rec.ID)
	if err != nil {
		slog.Warn("no executable registered for action, attaching stub",
			"action_id", rec.ID,
			"name", rec.Name)
		exec = notImplementedStub
	}

	allOpts := append([]Option{
		WithCorrelationID(rec.CorrelationID),
		WithTimestamp(rec.Timestamp),
	}, opts...)
	return New(ledger, rec.Name, rec.Params, exec, allOpts...), nil
}

// notImplementedStub stands in for unrecoverable executable logic.
func notImplementedStub(_ context.Context, _ tally.State, _ []any) (Effect, error) {
	return Effect{}, ErrNotImplemented
}
