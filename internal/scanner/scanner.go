package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"murmur/internal/config"
	"murmur/internal/logging"
	"murmur/internal/signature"
)

// Candidate is one file eligible for processing in the current cycle.
type Candidate struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Signature returns the candidate's identity tuple as observed at scan time.
func (c Candidate) Signature() signature.Signature {
	return signature.Signature{Path: c.Path, Size: c.Size, ModTime: c.ModTime.Truncate(time.Second)}
}

// LedgerView is the slice of the ledger the scanner needs to filter
// already-handled signatures.
type LedgerView interface {
	HasSucceeded(ctx context.Context, sig signature.Signature) (bool, error)
	FailedAttempts(ctx context.Context, sig signature.Signature) (int, error)
}

// Scanner discovers candidate recordings under the configured roots. Each
// Scan call is independent: signatures are re-observed from the filesystem
// every cycle so in-progress syncs are caught, and nothing is cached between
// calls beyond what the ledger holds.
type Scanner struct {
	roots      []string
	extensions map[string]struct{}
	maxAge     time.Duration
	retryLimit int
	ledger     LedgerView
	logger     *slog.Logger
	now        func() time.Time
	anchor     func(path string, modTime time.Time) time.Time
}

// New constructs a scanner from configuration.
func New(cfg *config.Config, view LedgerView, logger *slog.Logger) *Scanner {
	extensions := make(map[string]struct{}, len(cfg.Scan.Extensions))
	for _, ext := range cfg.Scan.Extensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}
	return &Scanner{
		roots:      append([]string(nil), cfg.Scan.Roots...),
		extensions: extensions,
		maxAge:     cfg.MaxFileAge(),
		retryLimit: cfg.Scan.RetryLimit,
		ledger:     view,
		logger:     logging.NewComponentLogger(logger, "scanner"),
		now:        time.Now,
		anchor:     ageAnchor,
	}
}

// Scan walks the configured roots and returns candidates sorted oldest-first
// so the backlog drains in creation order. Missing or unreadable roots are
// skipped with a warning; only ledger failures abort the scan.
func (s *Scanner) Scan(ctx context.Context) ([]Candidate, error) {
	now := s.now()
	var candidates []Candidate

	for _, dir := range s.expandRoots() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.logger.Warn("scan root unreadable, skipping",
				logging.String("root", dir), logging.Error(err))
			continue
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if entry.IsDir() {
				continue
			}
			if _, ok := s.extensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				s.logger.Warn("stat failed, skipping file",
					logging.String("path", filepath.Join(dir, entry.Name())), logging.Error(err))
				continue
			}
			path := filepath.Join(dir, entry.Name())
			candidate := Candidate{Path: path, Size: info.Size(), ModTime: info.ModTime()}

			// Strictly-less-than: a file exactly max-age old is excluded.
			if now.Sub(s.anchor(path, candidate.ModTime)) >= s.maxAge {
				continue
			}

			keep, err := s.wanted(ctx, candidate)
			if err != nil {
				return nil, err
			}
			if keep {
				candidates = append(candidates, candidate)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].ModTime.Equal(candidates[j].ModTime) {
			return candidates[i].ModTime.Before(candidates[j].ModTime)
		}
		return candidates[i].Path < candidates[j].Path
	})
	return candidates, nil
}

func (s *Scanner) wanted(ctx context.Context, candidate Candidate) (bool, error) {
	sig := candidate.Signature()
	succeeded, err := s.ledger.HasSucceeded(ctx, sig)
	if err != nil {
		return false, err
	}
	if succeeded {
		return false, nil
	}
	if s.retryLimit > 0 {
		attempts, err := s.ledger.FailedAttempts(ctx, sig)
		if err != nil {
			return false, err
		}
		if attempts >= s.retryLimit {
			s.logger.Debug("retry limit reached, skipping file",
				logging.String("path", candidate.Path), logging.Int("attempts", attempts))
			return false, nil
		}
	}
	return true, nil
}

// expandRoots resolves each configured root, treating it as a glob pattern
// when it contains metacharacters. Patterns that expand to nothing produce a
// warning so misconfigured roots are visible.
func (s *Scanner) expandRoots() []string {
	var dirs []string
	seen := make(map[string]struct{})
	for _, root := range s.roots {
		matches := []string{root}
		if containsGlobMeta(root) {
			expanded, err := doublestar.FilepathGlob(root)
			if err != nil {
				s.logger.Warn("invalid root pattern, skipping",
					logging.String("root", root), logging.Error(err))
				continue
			}
			matches = expanded
		}
		if len(matches) == 0 {
			s.logger.Warn("root pattern matched nothing", logging.String("root", root))
			continue
		}
		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			dirs = append(dirs, match)
		}
	}
	sort.Strings(dirs)
	return dirs
}

func containsGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
