// Package outcome defines the discriminated result of executing an action:
// a Result on success or an Issue on failure, never both, never neither.
//
// The two shapes form a sealed union over the Outcome interface rather than
// an error hierarchy. Call sites branch on the concrete type (or IsSuccess)
// instead of catching: failures are data.
package outcome

import (
	"time"

	"github.com/roach88/tally/action"
)

// Outcome is either a *Result or an *Issue. The interface is sealed; no
// other implementations exist, so a type switch over the two shapes is
// exhaustive.
type Outcome interface {
	// IsSuccess discriminates the union: true for Result, false for Issue.
	IsSuccess() bool

	// OutcomeID returns the outcome's own unique id.
	OutcomeID() string

	// Correlation returns the correlation id inherited from the action,
	// empty when ungrouped.
	Correlation() string

	// Errors returns the captured errors. Always empty for a Result,
	// never empty for an Issue.
	Errors() []error

	sealed()
}

// Option configures outcome construction.
type Option func(*settings)

type settings struct {
	gen       action.IDGenerator
	timestamp time.Time
}

// WithIDGenerator overrides the id source, for deterministic tests.
func WithIDGenerator(gen action.IDGenerator) Option {
	return func(s *settings) { s.gen = gen }
}

// WithTimestamp overrides the outcome timestamp.
func WithTimestamp(ts time.Time) Option {
	return func(s *settings) { s.timestamp = ts }
}

func applyOptions(opts []Option) settings {
	s := settings{gen: action.UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&s)
	}
	if s.timestamp.IsZero() {
		s.timestamp = time.Now()
	}
	return s
}

// executionTime derives how long an action took: the outcome timestamp minus
// the action's creation timestamp. The second return is false when there is
// no action (or its timestamp is unset), so callers can serialize unknown
// timing as null rather than a fake zero.
func executionTime(act *action.Action, outcomeTS time.Time) (time.Duration, bool) {
	if act == nil || act.Timestamp().IsZero() {
		return 0, false
	}
	return outcomeTS.Sub(act.Timestamp()), true
}
