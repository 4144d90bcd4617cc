// Package scanner discovers candidate voice recordings under the configured
// sync roots. It filters by extension, recency window, and ledger history so
// each polling cycle only surfaces files that still need work.
package scanner
