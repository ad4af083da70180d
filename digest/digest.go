// Package digest defines point-in-time snapshots of a container: its state
// plus the serialized history of actions applied up to that point. Digests
// are created on interval boundaries, never mutated afterwards, and looked
// up by id for later restoration.
package digest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
)

// Digest is a snapshot of container state at a point in time. State is a
// full clone, never a reference into the live container, and History holds
// the operation log in its serialized (executable-free) form.
type Digest struct {
	ID        string
	Timestamp time.Time
	State     tally.State
	History   []action.Record
}

// New builds a digest, deep-cloning state so later container mutations
// cannot reach into the snapshot.
func New(id string, ts time.Time, state tally.State, history []action.Record) Digest {
	return Digest{
		ID:        id,
		Timestamp: ts,
		State:     tally.Clone(state),
		History:   append([]action.Record(nil), history...),
	}
}

// Record is the JSON form of a digest.
type Record struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	State     tally.State     `json:"state"`
	History   []action.Record `json:"history"`
}

// Record returns the digest's serializable form.
func (d Digest) Record() Record {
	return Record{
		ID:        d.ID,
		Timestamp: d.Timestamp,
		State:     d.State,
		History:   d.History,
	}
}

// Serialize renders the digest as a canonical JSON string. Two digests with
// equal content serialize identically.
func (d Digest) Serialize() (string, error) {
	historyList := make([]any, len(d.History))
	for i, rec := range d.History {
		entry := map[string]any{
			"id":        rec.ID,
			"name":      rec.Name,
			"params":    paramsList(rec.Params),
			"timestamp": rec.Timestamp,
		}
		if rec.CorrelationID != "" {
			entry["correlationId"] = rec.CorrelationID
		}
		historyList[i] = entry
	}

	data, err := MarshalCanonical(map[string]any{
		"id":        d.ID,
		"timestamp": d.Timestamp,
		"state":     d.State,
		"history":   historyList,
	})
	if err != nil {
		return "", fmt.Errorf("serialize digest %s: %w", d.ID, err)
	}
	return string(data), nil
}

func paramsList(params []any) []any {
	if params == nil {
		return []any{}
	}
	return params
}

// Parse reconstructs a digest from its serialized form. The history comes
// back as plain records; re-attaching executables is the caller's job (the
// container rehydrates through its ledger).
func Parse(serialized string) (Digest, error) {
	var rec Record
	if err := json.Unmarshal([]byte(serialized), &rec); err != nil {
		return Digest{}, fmt.Errorf("parse digest: %w", err)
	}
	if rec.ID == "" {
		return Digest{}, fmt.Errorf("parse digest: missing id")
	}
	return Digest{
		ID:        rec.ID,
		Timestamp: rec.Timestamp,
		State:     rec.State,
		History:   rec.History,
	}, nil
}
