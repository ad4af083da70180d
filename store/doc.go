// Package store provides SQLite-backed durable storage for container
// digests.
//
// The store holds digests in their canonical serialized form: the same
// string handed to a persist callback is the string written to disk, and
// the string read back parses with digest.Parse. Writes are idempotent,
// duplicate digest ids are silently ignored.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// Listing orders by creation time then id COLLATE BINARY, so repeated
// listings over the same data return identical results.
//
// Persister and Fetcher adapt a Store to the container's callback types,
// wiring digest-on-interval directly into durable storage.
package store
