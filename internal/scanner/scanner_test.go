package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"murmur/internal/ledger"
	"murmur/internal/logging"
	"murmur/internal/signature"
	"murmur/internal/testsupport"
)

func mustCompute(t *testing.T, path string) signature.Signature {
	t.Helper()
	sig, err := signature.Compute(path)
	if err != nil {
		t.Fatalf("signature.Compute(%s): %v", path, err)
	}
	return sig
}

func TestScanFindsRecordingsOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	root := cfg.Scan.Roots[0]

	testsupport.WriteRecordingAged(t, root, "newer.m4a", "audio-b", time.Minute)
	testsupport.WriteRecordingAged(t, root, "older.m4a", "audio-a", 2*time.Hour)
	testsupport.WriteRecording(t, root, "notes.txt", "not audio")
	if err := os.MkdirAll(filepath.Join(root, "subdir.m4a"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	s := New(cfg, store, logging.NewNop())
	candidates, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if filepath.Base(candidates[0].Path) != "older.m4a" {
		t.Fatalf("expected older.m4a first, got %s", candidates[0].Path)
	}
	if filepath.Base(candidates[1].Path) != "newer.m4a" {
		t.Fatalf("expected newer.m4a second, got %s", candidates[1].Path)
	}
}

func TestScanSkipsSucceededSignatures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	root := cfg.Scan.Roots[0]

	done := testsupport.WriteRecording(t, root, "done.m4a", "audio")
	testsupport.WriteRecording(t, root, "todo.m4a", "audio")

	ctx := context.Background()
	if err := store.Record(ctx, mustCompute(t, done), ledger.OutcomeSucceeded, "https://notion.so/x", ""); err != nil {
		t.Fatalf("Record: %v", err)
	}

	candidates, err := New(cfg, store, logging.NewNop()).Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 1 || filepath.Base(candidates[0].Path) != "todo.m4a" {
		t.Fatalf("expected only todo.m4a, got %+v", candidates)
	}
}

func TestScanModifiedFileIsANewCandidate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	root := cfg.Scan.Roots[0]

	path := testsupport.WriteRecording(t, root, "memo.m4a", "audio")
	ctx := context.Background()
	if err := store.Record(ctx, mustCompute(t, path), ledger.OutcomeSucceeded, "", ""); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Same path, different content and mtime: a distinct signature.
	testsupport.WriteRecordingAged(t, root, "memo.m4a", "audio plus more", 30*time.Minute)

	candidates, err := New(cfg, store, logging.NewNop()).Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected rewritten file to be rescanned, got %+v", candidates)
	}
}

func TestScanHonorsRetryLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRetryLimit(2))
	store := testsupport.MustOpenLedger(t, cfg)
	root := cfg.Scan.Roots[0]

	path := testsupport.WriteRecording(t, root, "flaky.m4a", "audio")
	sig := mustCompute(t, path)
	ctx := context.Background()

	if err := store.Record(ctx, sig, ledger.OutcomeFailed, "", "boom"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	candidates, err := New(cfg, store, logging.NewNop()).Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("one failure should still be retried, got %+v", candidates)
	}

	if err := store.Record(ctx, sig, ledger.OutcomeFailed, "", "boom again"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	candidates, err = New(cfg, store, logging.NewNop()).Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("retry limit reached, expected no candidates, got %+v", candidates)
	}
}

func TestScanZeroRetryLimitRetriesForever(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	root := cfg.Scan.Roots[0]

	path := testsupport.WriteRecording(t, root, "flaky.m4a", "audio")
	sig := mustCompute(t, path)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, sig, ledger.OutcomeFailed, "", "boom"); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	candidates, err := New(cfg, store, logging.NewNop()).Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected failed file to stay eligible, got %+v", candidates)
	}
}

func TestScanExcludesFilesBeyondMaxAge(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	root := cfg.Scan.Roots[0]

	testsupport.WriteRecordingAged(t, root, "stale.m4a", "audio", 8*24*time.Hour)
	testsupport.WriteRecordingAged(t, root, "fresh.m4a", "audio", time.Hour)

	s := New(cfg, store, logging.NewNop())
	// Pin the anchor to mtime so the fixture's backdated timestamp decides.
	s.anchor = func(_ string, modTime time.Time) time.Time { return modTime }

	candidates, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 1 || filepath.Base(candidates[0].Path) != "fresh.m4a" {
		t.Fatalf("expected only fresh.m4a, got %+v", candidates)
	}
}

func TestScanExactMaxAgeIsExcluded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	root := cfg.Scan.Roots[0]

	now := time.Now()
	testsupport.WriteRecordingAged(t, root, "boundary.m4a", "audio", 0)

	s := New(cfg, store, logging.NewNop())
	s.anchor = func(_ string, modTime time.Time) time.Time { return modTime }
	s.now = func() time.Time { return now.Add(cfg.MaxFileAge()) }
	if err := os.Chtimes(filepath.Join(root, "boundary.m4a"), now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	candidates, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("file exactly at the max age must be excluded, got %+v", candidates)
	}
}

func TestScanMissingRootIsNotFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	cfg := testsupport.NewConfig(t, testsupport.WithRoots(missing))
	store := testsupport.MustOpenLedger(t, cfg)

	candidates, err := New(cfg, store, logging.NewNop()).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected empty scan, got %+v", candidates)
	}
}

func TestScanExpandsGlobRoots(t *testing.T) {
	base := t.TempDir()
	cfg := testsupport.NewConfig(t, testsupport.WithRoots(filepath.Join(base, "dev*", "memos")))
	store := testsupport.MustOpenLedger(t, cfg)

	testsupport.WriteRecording(t, filepath.Join(base, "device-a", "memos"), "a.m4a", "audio")
	testsupport.WriteRecording(t, filepath.Join(base, "device-b", "memos"), "b.m4a", "audio")

	candidates, err := New(cfg, store, logging.NewNop()).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected candidates from both device roots, got %+v", candidates)
	}
}
