// Package container implements the state container: the component that owns
// current state, applies actions through the invoke boundary, and keeps the
// bookkeeping that makes replay possible.
//
// A Container coordinates five things per applied action:
//
//  1. History: an ordered, append-only log of actions, bounded by entry
//     count (oldest evicted first) and by entry age.
//  2. Invocation: execution is delegated to the invoke package; the
//     container never sees a raw panic, only Result or Issue values.
//  3. State merge: a success Result's next state overlays current state at
//     the top level. Nested values are replaced wholesale, never
//     deep-merged.
//  4. Digesting: every digestInterval successful applies, a snapshot of
//     state plus history is built and persisted, either to the in-memory
//     digest list or through a caller-supplied persist callback.
//  5. Notification: subscribers, middleware, and lifecycle hooks observe
//     the container without being able to break it; their failures are
//     logged and swallowed.
//
// ARCHITECTURE:
//
// Single-Writer Container:
// Every public entry point takes a context and may suspend (executables,
// digest callbacks, and observers perform arbitrary I/O), but none spawns
// workers. Correctness relies on one Add/Rerun/Reset/Retry/Hydrate call
// completing before the next begins. The container deliberately holds no
// lock over state, history, or the replay pointer; callers that need
// concurrent submission must serialize externally, e.g. behind a
// single-writer queue.
// Shared collaborators (the ledger, subscriber and hook registries) are
// individually mutex-guarded because registration may come from anywhere.
//
// Ordering:
// History preserves insertion order. Rerun and Hydrate restore actions
// strictly in recorded order. Digesting snapshots the merged state, never
// the pre-merge one, and the merge commits only once digesting succeeds.
//
// Failure boundary:
// Add, Rerun, Reset, Retry, and Hydrate always resolve to a Result or an
// Issue. Only construction (range validation) and direct ledger calls
// return plain errors.
package container
