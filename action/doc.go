// Package action defines the unit of work the rest of the module revolves
// around: a named, parameterized, immutable Action with attached executable
// logic, plus the Ledger that lets actions survive serialization.
//
// An Action's executable logic is a plain Go function and cannot be
// serialized. Serializing an action therefore produces a Record carrying only
// data (id, name, params, correlation id, timestamp), and reconstructing one
// from a Record consults a Ledger to re-attach the logic that was registered
// under the original action's id. When the ledger has no entry the action is
// rebuilt anyway, bound to a stub that fails with ErrNotImplemented on
// execution; deserialized actions are always usable as data even when their
// logic cannot be recovered.
package action
