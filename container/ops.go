package container

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
	"github.com/roach88/tally/hooks"
	"github.com/roach88/tally/invoke"
	"github.com/roach88/tally/outcome"
)

// Add applies act to base state: records it in history, prunes, delegates to
// the invoke boundary, and on success merges the produced state into current
// state, advancing the replay pointer and the digest counter. A content-only
// success (nil next state) is returned as-is: state, pointer, and counter
// stay where they were.
//
// Add never returns a raw error or panics; every failure, including
// container-level ones, is normalized to an Issue and current state is left
// unmodified on any failure path.
func (c *Container) Add(ctx context.Context, act *action.Action, base tally.State, persist ...PersistFunc) (out outcome.Outcome) {
	defer c.normalize(act, &out)

	if act == nil {
		return outcome.FromMessage("no action provided")
	}

	c.appendHistory(act, time.Now())
	c.mw.apply(ctx, act)

	res, iss := c.invokeGuarded(ctx, act, base)
	if iss != nil {
		c.hooks.Fire(ctx, hooks.AfterActionCleanup, act, iss)
		return iss
	}

	if res.NextState() != nil {
		if err := c.applySuccess(ctx, act, res.NextState(), len(c.history)-1, true, persist); err != nil {
			iss := outcome.FromAction(act, err)
			c.hooks.Fire(ctx, hooks.AfterActionCleanup, act, iss)
			return iss
		}
	}

	c.hooks.Fire(ctx, hooks.AfterActionCleanup, act, res)
	return res
}

// Rerun re-executes history entries [0..index] sequentially starting from
// base, folding each success's next state forward as the base for the next.
// The first Issue short-circuits the replay. On full success the final state
// merges into current state, the pointer moves to index, and the same
// digesting logic as Add runs.
//
// An out-of-range index is an immediate Issue and leaves state and pointer
// unchanged.
func (c *Container) Rerun(ctx context.Context, index int, base tally.State, persist ...PersistFunc) (out outcome.Outcome) {
	defer c.normalize(nil, &out)

	if index < 0 || index >= len(c.history) {
		return outcome.FromMessage(MsgInvalidRerunIndex)
	}

	state := base
	var last *outcome.Result
	for i := 0; i <= index; i++ {
		res, iss := c.invokeGuarded(ctx, c.history[i], state)
		if iss != nil {
			return iss
		}
		if res.NextState() != nil {
			state = tally.Merge(state, res.NextState())
		}
		last = res
	}

	if err := c.applySuccess(ctx, nil, state, index, false, persist); err != nil {
		return outcome.FromAction(nil, err)
	}
	return last
}

// Reset re-invokes the action at the current pointer and, on success, merges
// its state and steps the pointer back by one. With nothing applied yet
// (pointer at -1) it returns an Issue. A content-only success (nil next
// state) leaves state, pointer, and digest counter untouched, same as Add.
func (c *Container) Reset(ctx context.Context, base tally.State, persist ...PersistFunc) (out outcome.Outcome) {
	defer c.normalize(nil, &out)

	if c.current < 0 || c.current >= len(c.history) {
		return outcome.FromMessage(MsgNoActionsToReset)
	}

	act := c.history[c.current]
	res, iss := c.invokeGuarded(ctx, act, base)
	if iss != nil {
		return iss
	}
	if res.NextState() != nil {
		if err := c.applySuccess(ctx, act, res.NextState(), c.current-1, true, persist); err != nil {
			return outcome.FromAction(act, err)
		}
	}
	return res
}

// Retry re-invokes the action just past the current pointer, if one exists,
// merging its state and advancing the pointer on success. A content-only
// success leaves state, pointer, and digest counter untouched, same as Add.
func (c *Container) Retry(ctx context.Context, base tally.State, persist ...PersistFunc) (out outcome.Outcome) {
	defer c.normalize(nil, &out)

	next := c.current + 1
	if next >= len(c.history) {
		return outcome.FromMessage(MsgNoActionToRetry)
	}

	act := c.history[next]
	res, iss := c.invokeGuarded(ctx, act, base)
	if iss != nil {
		return iss
	}
	if res.NextState() != nil {
		if err := c.applySuccess(ctx, act, res.NextState(), next, true, persist); err != nil {
			return outcome.FromAction(act, err)
		}
	}
	return res
}

// invokeGuarded runs the invoke boundary, adding the strict-mode mutation
// check around it. Exactly one of the returns is non-nil.
func (c *Container) invokeGuarded(ctx context.Context, act *action.Action, base tally.State) (*outcome.Result, *outcome.Issue) {
	var snapshot tally.State
	if c.strict {
		snapshot = tally.Clone(base)
	}

	out := invoke.Invoke(ctx, act, base)

	if c.strict && tally.Mutated(snapshot, base) {
		return nil, outcome.FromAction(act, ErrStateMutated)
	}

	switch v := out.(type) {
	case *outcome.Result:
		return v, nil
	case *outcome.Issue:
		return nil, v
	default:
		return nil, outcome.FromAction(act, fmt.Errorf("unexpected outcome shape %T", out))
	}
}

// applySuccess is the single success path: merge next state into current
// state, advance the digest counter (digesting at the interval boundary),
// move the replay pointer, and notify observers.
//
// The merged state is staged first so a digest at the interval boundary
// snapshots it, and state, counter, and pointer commit only once digesting
// succeeds. A persist failure therefore returns an error with the container
// exactly as it was before the call.
func (c *Container) applySuccess(ctx context.Context, act *action.Action, next tally.State, pointer int, notify bool, persist []PersistFunc) error {
	c.hooks.Fire(ctx, hooks.BeforeStateChange, c.State())

	staged := c.state
	if next != nil {
		staged = tally.Merge(c.state, next)
	}

	count := c.actionCount + 1
	if count >= c.digestInterval {
		if err := c.makeDigest(ctx, staged, persist); err != nil {
			return fmt.Errorf("digesting failed: %w", err)
		}
		count = 0
	}

	c.state = staged
	c.actionCount = count
	c.current = pointer
	c.hooks.Fire(ctx, hooks.AfterStateChange, c.State())
	if notify {
		c.subs.alert(ctx, act, c.State())
	}
	return nil
}

// normalize is the outermost no-throw boundary: a panic anywhere in a
// mutating entry point becomes an Issue rather than escaping to the caller.
func (c *Container) normalize(act *action.Action, out *outcome.Outcome) {
	if r := recover(); r != nil {
		c.logger.Error("container entry point panicked", "panic", fmt.Sprintf("%v", r))
		*out = outcome.FromAction(act, r)
	}
}
