// Package store provides SQLite-backed durable storage for valuer.
//
// The store holds two things:
//   - Snapshots: a key/value table where the current draft is upserted on
//     every mutation (last writer wins, no versioning)
//   - Deliveries: an append-only journal of completed dispatches
//
// # Database Configuration
//
//   - WAL mode: readers never block the writer
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// Journal queries order by (created_at_ms DESC, id DESC) so listings are
// deterministic even when two deliveries share a millisecond.
package store
