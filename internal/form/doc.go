// Package form owns the valuation draft an operator edits.
//
// Model enforces the item-count floor (a draft always has at least one item)
// and persists a full snapshot of the draft after every successful mutation.
// Mutations are copy-on-write: each one builds a new Items slice and never
// edits a slice that a previous Request() call may have returned.
//
// Persistence is persist-then-commit. If the snapshot cannot be written the
// in-memory draft keeps its previous value and the error is returned, so the
// in-memory and persisted copies never diverge.
package form
