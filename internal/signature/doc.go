// Package signature derives stable file identities and decides when a
// cloud-synced recording has finished being written.
//
// A Signature is the (path, size, mtime) tuple the ledger keys on. The
// Checker guards against partial syncs by requiring a minimum age and an
// unchanged resample before a file is handed to the pipeline.
package signature
