// Package ledger persists processing outcomes in SQLite, keyed by file
// signature (path, size, mtime).
//
// The Store is the daemon's only durable state: it is what prevents a
// recording from being transcribed and published twice across restarts. Rows
// are upserted per signature with sticky success semantics — once a signature
// is recorded as succeeded, later failures never downgrade it, while a retry
// that succeeds overwrites the earlier failure. Every mutation runs in a
// single transaction so a crash mid-write cannot corrupt committed rows.
//
// The database assumes a single writing daemon. Schema changes bump the
// version in schema.go; users clear the ledger to adopt the new schema.
package ledger
