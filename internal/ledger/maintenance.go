package ledger

import (
	"context"
	"time"

	"murmur/internal/services"
)

// CleanupOlderThan removes entries processed more than the given number of
// days ago and returns how many rows were deleted.
func (s *Store) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := s.execWithRetry(ctx,
		`DELETE FROM processed_files WHERE processed_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "ledger", "cleanup", "", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "ledger", "cleanup rows affected", "", err)
	}
	return deleted, nil
}

// Clear removes every ledger entry. Used by 'murmur ledger clear'.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM processed_files`)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "ledger", "clear", "", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "ledger", "clear rows affected", "", err)
	}
	return deleted, nil
}
