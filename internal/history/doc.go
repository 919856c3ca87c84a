// Package history persists a ledger of sync runs in SQLite.
//
// Each run records its counters and output paths; unmatched song/artist pairs
// are upserted so operators can see which free-text entries keep failing to
// reconcile against the catalog across runs. The store mirrors the queue
// layout used elsewhere: an embedded schema, a schema_version guard, and busy
// retries around writes.
package history
