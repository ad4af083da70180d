package action

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/tally"
)

// Effect is the transient value produced by executing an action: arbitrary
// content plus a pure transform from old state to new state.
//
// Transform MUST NOT mutate its input; it returns a structurally new value.
// A nil Transform means the action produced content without a state change.
type Effect struct {
	Content   any
	Transform func(tally.State) tally.State
}

// Executable is an action's attached logic. It receives the state the action
// runs against and the action's params, and produces an Effect or an error.
// Executables may perform arbitrary I/O; ctx carries cancellation.
type Executable func(ctx context.Context, state tally.State, params []any) (Effect, error)

// Action is an immutable, named, parameterized unit of work. The only
// mutation permitted after construction is attaching (or replacing) the
// executable, which exists to support rebinding logic to actions rebuilt from
// serialized records.
//
// Actions are constructed through New, never as bare literals, so that
// ledger bookkeeping happens atomically with creation.
type Action struct {
	id            string
	correlationID string
	name          string
	params        []any
	exec          Executable
	timestamp     time.Time
	ledger        *Ledger
}

// Option configures an Action at construction.
type Option func(*settings)

type settings struct {
	correlationID string
	gen           IDGenerator
	timestamp     time.Time
}

// WithCorrelationID groups related actions under a caller-supplied id.
func WithCorrelationID(id string) Option {
	return func(s *settings) { s.correlationID = id }
}

// WithIDGenerator overrides the id source. Tests pass a FixedGenerator for
// deterministic ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *settings) { s.gen = gen }
}

// WithTimestamp overrides the creation timestamp.
func WithTimestamp(ts time.Time) Option {
	return func(s *settings) { s.timestamp = ts }
}

// New creates an Action with a fresh id and registers exec under that id in
// the ledger. Registration is first-writer-wins and redundant creation is not
// an error; only a direct Ledger.Set call reports duplicates.
//
// A nil ledger falls back to the process-wide Default ledger. A nil exec is
// allowed: the action is usable as data and Execute fails with
// ErrNotImplemented until logic is attached.
func New(ledger *Ledger, name string, params []any, exec Executable, opts ...Option) *Action {
	s := settings{gen: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&s)
	}
	if s.timestamp.IsZero() {
		s.timestamp = time.Now()
	}
	if ledger == nil {
		ledger = Default()
	}

	act := &Action{
		id:            s.gen.Generate(),
		correlationID: s.correlationID,
		name:          name,
		params:        append([]any(nil), params...),
		exec:          exec,
		timestamp:     s.timestamp,
		ledger:        ledger,
	}
	if exec != nil && !ledger.Has(act.id) {
		// Fresh ids make duplicates impossible here; ignore Set's error
		// rather than surface one callers cannot act on.
		_ = ledger.Set(act.id, exec)
	}
	return act
}

// ID returns the generated unique identifier.
func (a *Action) ID() string { return a.id }

// CorrelationID returns the caller-supplied grouping id, empty when unset.
func (a *Action) CorrelationID() string { return a.correlationID }

// Name returns the action name.
func (a *Action) Name() string { return a.name }

// Params returns a copy of the params fixed at construction.
func (a *Action) Params() []any {
	return append([]any(nil), a.params...)
}

// Timestamp returns the creation time.
func (a *Action) Timestamp() time.Time { return a.timestamp }

// Implemented reports whether executable logic is currently attached.
func (a *Action) Implemented() bool { return a.exec != nil }

// Attach replaces the executable and returns the action for chaining.
// Allowed any number of times. Not guarded against concurrent use; the
// container's single-writer model means attachment happens before execution.
func (a *Action) Attach(exec Executable) *Action {
	a.exec = exec
	return a
}

// Execute invokes the attached executable with the given state and the
// action's params. Fails with ErrNotImplemented when no executable is
// attached.
//
// Execute is a raw call: errors propagate to the caller. The invoke package
// wraps this boundary into outcome values.
func (a *Action) Execute(ctx context.Context, state tally.State) (Effect, error) {
	if a.exec == nil {
		return Effect{}, fmt.Errorf("action %q (%s): %w", a.name, a.id, ErrNotImplemented)
	}
	return a.exec(ctx, state, a.params)
}
