// Package daemon coordinates the long-running murmur process.
//
// It wires configuration, the ledger store, and the polling monitor into a
// single lifecycle with flock-based locking to prevent multiple instances.
//
// Keep orchestration logic here: the per-file processing steps live in their
// respective packages while the daemon focuses on startup, shutdown, and
// high level coordination.
package daemon
