package container

import (
	"context"
	"fmt"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
	"github.com/roach88/tally/hooks"
	"github.com/roach88/tally/outcome"
)

// Hydrate restores the container from a digest looked up by id: through the
// fetch callback first, falling back to the locally held digest list.
//
// On success, the digest's state MERGES over current state while the history
// is REPLACED wholesale with the digest's, rehydrated through the ledger
// (entries whose logic is gone come back stub-attached). The digest counter
// resets and the replay pointer moves to the end of the restored history.
// The merge/replace asymmetry is a fixed contract, not a choice to revisit.
//
// Not-found and parse failures return an Issue and leave everything
// untouched.
func (c *Container) Hydrate(ctx context.Context, digestID string, fetch ...FetchFunc) (out outcome.Outcome) {
	defer c.normalize(nil, &out)
	defer func() {
		c.hooks.Fire(ctx, hooks.AfterHydrationCleanup, c.State())
	}()

	d, found, err := c.lookupDigest(ctx, digestID, fetch)
	if err != nil {
		c.hooks.Fire(ctx, hooks.HydrateError, err)
		return outcome.FromAction(nil, err)
	}
	if !found {
		err := fmt.Errorf("digest not found: %s", digestID)
		c.hooks.Fire(ctx, hooks.HydrateError, err)
		return outcome.FromMessage(err.Error())
	}

	c.hooks.Fire(ctx, hooks.StateValidation, d.State)

	// Rebuild history before touching state so a malformed record leaves
	// the container unmodified.
	restored := make([]*action.Action, 0, len(d.History))
	for _, rec := range d.History {
		act, err := action.FromRecord(c.ledger, rec)
		if err != nil {
			err = fmt.Errorf("restore history entry %q: %w", rec.ID, err)
			c.hooks.Fire(ctx, hooks.HydrateError, err)
			return outcome.FromAction(nil, err)
		}
		restored = append(restored, act)
	}

	prev := c.State()
	c.state = tally.Merge(c.state, d.State)
	c.history = restored
	c.actionCount = 0
	c.current = len(restored) - 1

	c.hooks.Fire(ctx, hooks.AfterHydrate, c.State())
	return outcome.NewResult(nil, d.ID, prev, c.State())
}
