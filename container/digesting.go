package container

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
	"github.com/roach88/tally/digest"
	"github.com/roach88/tally/hooks"
)

// PersistFunc stores a serialized digest externally. Returning a non-empty
// string hands back an authoritative (possibly rewritten or augmented)
// serialized digest, which the container parses and keeps; returning ""
// means "accepted, no override" and the external store owns the copy.
type PersistFunc func(ctx context.Context, serialized string) (string, error)

// FetchFunc retrieves a serialized digest by id from external storage.
// Returning "" means "not found externally" and triggers the local-list
// fallback.
type FetchFunc func(ctx context.Context, digestID string) (string, error)

// makeDigest snapshots the given state and current history into a new
// digest and persists it: through the caller's persist callback when one is
// supplied, into the in-memory digest list otherwise. The state comes from
// the caller because digesting runs against the staged post-merge state
// before it commits. Building the digest never alters state or history;
// serializing history re-registers executables in the ledger as a side
// effect, keeping later rehydration possible.
func (c *Container) makeDigest(ctx context.Context, state tally.State, persist []PersistFunc) error {
	records := make([]action.Record, len(c.history))
	for i, act := range c.history {
		records[i] = act.ToRecord()
	}
	d := digest.New(c.gen.Generate(), time.Now(), state, records)

	var cb PersistFunc
	if len(persist) > 0 {
		cb = persist[0]
	}
	if cb == nil {
		c.digests = append(c.digests, d)
		return nil
	}

	serialized, err := d.Serialize()
	if err != nil {
		return err
	}
	override, err := cb(ctx, serialized)
	if err != nil {
		return fmt.Errorf("persist digest %s: %w", d.ID, err)
	}
	if override != "" {
		// The store rewrote the digest; its version is authoritative
		// and the local list keeps that copy.
		authoritative, err := digest.Parse(override)
		if err != nil {
			return fmt.Errorf("parse persisted digest %s: %w", d.ID, err)
		}
		c.digests = append(c.digests, authoritative)
	}
	return nil
}

// lookupDigest mirrors the dual persistence path: the fetch callback is
// consulted first, the local list is the fallback.
func (c *Container) lookupDigest(ctx context.Context, id string, fetch []FetchFunc) (digest.Digest, bool, error) {
	var cb FetchFunc
	if len(fetch) > 0 {
		cb = fetch[0]
	}
	if cb != nil {
		serialized, err := cb(ctx, id)
		if err != nil {
			return digest.Digest{}, false, fmt.Errorf("fetch digest %s: %w", id, err)
		}
		if serialized != "" {
			c.hooks.Fire(ctx, hooks.BeforeHydrate, serialized)
			parsed, err := digest.Parse(serialized)
			if err != nil {
				return digest.Digest{}, false, err
			}
			return parsed, true, nil
		}
	}
	for _, d := range c.digests {
		if d.ID == id {
			return d, true, nil
		}
	}
	return digest.Digest{}, false, nil
}
