package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"murmur/internal/services"
	"murmur/internal/signature"
)

const entryColumns = "id, file_path, file_size, modified_at, outcome, processed_at, remote_url, error_message, attempts"

// Get returns the ledger entry for a signature, or nil when none exists.
func (s *Store) Get(ctx context.Context, sig signature.Signature) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM processed_files
         WHERE file_path = ? AND file_size = ? AND modified_at = ?`,
		sig.Path, sig.Size, formatTime(sig.ModTime),
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "ledger", "get entry", sig.Path, err)
	}
	return entry, nil
}

// HasSucceeded reports whether the signature already has a successful outcome.
func (s *Store) HasSucceeded(ctx context.Context, sig signature.Signature) (bool, error) {
	entry, err := s.Get(ctx, sig)
	if err != nil {
		return false, err
	}
	return entry.Succeeded(), nil
}

// FailedAttempts returns how many failed attempts are recorded for a
// signature. Zero means the signature is unknown or has succeeded.
func (s *Store) FailedAttempts(ctx context.Context, sig signature.Signature) (int, error) {
	entry, err := s.Get(ctx, sig)
	if err != nil {
		return 0, err
	}
	if entry == nil || entry.Outcome != OutcomeFailed {
		return 0, nil
	}
	return entry.Attempts, nil
}

// Record upserts the outcome for a signature in a single transaction.
// Success is sticky: a failed outcome never overwrites a prior succeeded
// entry, while a retry that succeeds overwrites the earlier failure in place.
func (s *Store) Record(ctx context.Context, sig signature.Signature, outcome Outcome, remoteURL, errorMessage string) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var (
			existingID      int64
			existingOutcome Outcome
			attempts        int
		)
		row := tx.QueryRowContext(ctx,
			`SELECT id, outcome, attempts FROM processed_files
             WHERE file_path = ? AND file_size = ? AND modified_at = ?`,
			sig.Path, sig.Size, formatTime(sig.ModTime),
		)
		switch err := row.Scan(&existingID, &existingOutcome, &attempts); {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO processed_files
                 (file_path, file_size, modified_at, outcome, processed_at, remote_url, error_message, attempts)
                 VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
				sig.Path, sig.Size, formatTime(sig.ModTime),
				string(outcome), formatTime(now),
				nullableString(remoteURL), nullableString(errorMessage),
			); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if existingOutcome == OutcomeSucceeded && outcome == OutcomeFailed {
				// Idempotence: the file was already published once.
				return tx.Commit()
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE processed_files
                 SET outcome = ?, processed_at = ?, remote_url = ?, error_message = ?, attempts = ?
                 WHERE id = ?`,
				string(outcome), formatTime(now),
				nullableString(remoteURL), nullableString(errorMessage),
				attempts+1, existingID,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return services.Wrap(services.ErrStorage, "ledger", "record outcome", sig.Path, err)
	}
	return nil
}

// Recent returns the most recently processed entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM processed_files ORDER BY processed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "ledger", "list recent", "", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "ledger", "scan entry", "", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "ledger", "list recent", "", err)
	}
	return entries, nil
}

// Stats returns total counters plus the number of entries processed within
// the trailing window. A zero window counts nothing as recent.
func (s *Store) Stats(ctx context.Context, window time.Duration) (Stats, error) {
	var stats Stats
	cutoff := time.Now().UTC().Add(-window)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
                COALESCE(SUM(outcome = 'succeeded'), 0),
                COALESCE(SUM(outcome = 'failed'), 0),
                COALESCE(SUM(processed_at > ?), 0)
         FROM processed_files`,
		formatTime(cutoff),
	).Scan(&stats.Total, &stats.Succeeded, &stats.Failed, &stats.InWindow)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrStorage, "ledger", "stats", "", err)
	}
	if window <= 0 {
		stats.InWindow = 0
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry        Entry
		modifiedAt   string
		processedAt  string
		remoteURL    sql.NullString
		errorMessage sql.NullString
		outcome      string
	)
	if err := row.Scan(&entry.ID, &entry.Path, &entry.Size, &modifiedAt, &outcome,
		&processedAt, &remoteURL, &errorMessage, &entry.Attempts); err != nil {
		return nil, err
	}
	entry.Outcome = Outcome(outcome)
	entry.RemoteURL = remoteURL.String
	entry.ErrorMessage = errorMessage.String
	var err error
	if entry.ModifiedAt, err = parseTime(modifiedAt); err != nil {
		return nil, err
	}
	if entry.ProcessedAt, err = parseTime(processedAt); err != nil {
		return nil, err
	}
	return &entry, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
