// Package logs reads the daemon's log directory for the CLI.
//
// The daemon writes one murmur-<timestamp>.log per run and keeps the
// murmur.log pointer on the active file. Reader resolves that layout,
// tails the active file with bounded memory, and follows across daemon
// restarts for `murmur show --follow`.
package logs
