// Package monitor runs the polling loop that turns synced recordings into
// published transcripts. Each cycle scans for candidates, waits out files
// that are still syncing, processes the stable ones, and records outcomes in
// the ledger so work is never repeated.
package monitor
