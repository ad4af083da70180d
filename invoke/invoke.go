// Package invoke is the single boundary where executing an action becomes
// outcome data. Everything above it (the container's mutating entry points)
// and below it (executables, transforms) may fail however it likes; Invoke
// always resolves to exactly one of Result or Issue and never panics past
// itself.
package invoke

import (
	"context"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
	"github.com/roach88/tally/outcome"
)

// Invoke executes act against state and wraps the raw outcome.
//
//  1. The action's executable runs with (state, params) and yields an Effect.
//  2. The effect's transform produces the next state from the old one.
//  3. Content, prev state, and next state wrap into a success Result that
//     inherits the action's correlation id.
//
// Any error or panic during steps 1-2 (a failing executable, a misbehaving
// transform, an unattached executable) becomes a failure Issue instead.
// Panic values that are not errors are coerced via stringification.
func Invoke(ctx context.Context, act *action.Action, state tally.State, opts ...outcome.Option) (out outcome.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome.FromAction(act, r, opts...)
		}
	}()

	eff, err := act.Execute(ctx, state)
	if err != nil {
		return outcome.FromAction(act, err, opts...)
	}

	var next tally.State
	if eff.Transform != nil {
		next = eff.Transform(state)
	}
	return outcome.NewResult(act, eff.Content, state, next, opts...)
}
