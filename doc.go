// Package tally is a functional outcome-tracking layer for applications that
// model state transitions as discrete, named actions.
//
// Instead of raising errors through call stacks, executing an action produces
// an explicit, inspectable outcome value: a Result on success or an Issue on
// failure. A state container applies actions against a state value, keeps an
// ordered size- and time-bounded history of what ran, snapshots its state and
// history into digests at a configurable interval, and can replay recorded
// actions onto arbitrary base states to recover or rewind.
//
// The root package holds the State type and the small set of state utilities
// the rest of the module shares:
//
//   - State: the map-shaped value a container owns and actions transform
//   - Merge: the shallow top-level overlay used when a success is applied
//   - Clone: a deep, cycle-safe copy used by digests and the mutation guard
//
// The interesting machinery lives in the subpackages:
//
//   - action: the Action type, its executable logic, and the Ledger that
//     re-attaches logic to actions reconstructed from serialized form
//   - outcome: the Result/Issue union and its serialized records
//   - invoke: the single boundary that turns execution into outcome data
//   - container: the state container (add, rerun, reset, retry, hydrate)
//   - digest: snapshot values and their canonical JSON form
//   - store: a SQLite-backed digest store satisfying the container's
//     persist/fetch callback contract
//
// # Outcomes, not exceptions
//
// Every mutating container entry point resolves to exactly one of Result or
// Issue and never panics past its boundary. Failures are data to branch on:
//
//	out := c.Add(ctx, act, c.State())
//	if iss, ok := out.(*outcome.Issue); ok {
//	    log.Warn("action failed", "message", iss.Message)
//	    return
//	}
//
// # Serialization and the ledger
//
// Actions serialize to plain records, but their executable logic cannot. The
// action.Ledger maps action ids to executables so that a deserialized action
// can be re-bound to its logic. When the ledger has no entry, the action is
// still usable as data; executing it fails with a clear not-implemented
// outcome rather than a surprise.
package tally
