package ledger

import (
	"time"
)

// Outcome records how a processing attempt ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Entry is one ledger row: the latest known outcome for a file signature.
type Entry struct {
	ID           int64
	Path         string
	Size         int64
	ModifiedAt   time.Time
	Outcome      Outcome
	ProcessedAt  time.Time
	RemoteURL    string
	ErrorMessage string
	Attempts     int
}

// Succeeded reports whether the entry records a successful outcome.
func (e *Entry) Succeeded() bool {
	return e != nil && e.Outcome == OutcomeSucceeded
}

// Stats summarizes ledger contents for operator-visible counters.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	InWindow  int
}
