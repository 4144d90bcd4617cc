package ledger_test

import (
	"context"
	"testing"
	"time"

	"murmur/internal/ledger"
	"murmur/internal/signature"
	"murmur/internal/testsupport"
)

func testSig(path string, size int64) signature.Signature {
	return signature.Signature{
		Path:    path,
		Size:    size,
		ModTime: time.Now().Add(-time.Minute).Truncate(time.Second),
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	ctx := context.Background()
	sig := testSig("/recordings/a.m4a", 100)
	if err := store.Record(ctx, sig, ledger.OutcomeSucceeded, "https://notion.so/p1", ""); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entry, err := store.Get(ctx, sig)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry == nil || entry.Outcome != ledger.OutcomeSucceeded || entry.RemoteURL != "https://notion.so/p1" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestReopenPreservesEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()
	sig := testSig("/recordings/a.m4a", 100)

	first, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Record(ctx, sig, ledger.OutcomeSucceeded, "", ""); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := testsupport.MustOpenLedger(t, cfg)
	ok, err := second.HasSucceeded(ctx, sig)
	if err != nil {
		t.Fatalf("HasSucceeded failed: %v", err)
	}
	if !ok {
		t.Fatal("entry did not survive reopen")
	}
}

func TestSignatureIsTheDedupKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	sig := testSig("/recordings/a.m4a", 100)
	if err := store.Record(ctx, sig, ledger.OutcomeSucceeded, "", ""); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	// Same path, different size: a resynced edit is a different entity.
	edited := sig
	edited.Size = 250
	ok, err := store.HasSucceeded(ctx, edited)
	if err != nil {
		t.Fatalf("HasSucceeded failed: %v", err)
	}
	if ok {
		t.Fatal("edited file state must not inherit the original's success")
	}
}

func TestSuccessIsSticky(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()
	sig := testSig("/recordings/a.m4a", 100)

	if err := store.Record(ctx, sig, ledger.OutcomeSucceeded, "https://notion.so/p1", ""); err != nil {
		t.Fatalf("Record success failed: %v", err)
	}
	if err := store.Record(ctx, sig, ledger.OutcomeFailed, "", "late failure"); err != nil {
		t.Fatalf("Record failure failed: %v", err)
	}

	entry, err := store.Get(ctx, sig)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.Outcome != ledger.OutcomeSucceeded {
		t.Fatalf("success was downgraded to %q", entry.Outcome)
	}
	if entry.RemoteURL != "https://notion.so/p1" {
		t.Fatalf("remote reference lost: %q", entry.RemoteURL)
	}

	stats, err := store.Stats(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 1 {
		t.Fatalf("expected exactly one row per signature, got %d", stats.Total)
	}
}

func TestRetryThenSucceedOverwritesFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()
	sig := testSig("/recordings/a.m4a", 100)

	if err := store.Record(ctx, sig, ledger.OutcomeFailed, "", "transcription timed out"); err != nil {
		t.Fatalf("Record failure failed: %v", err)
	}
	attempts, err := store.FailedAttempts(ctx, sig)
	if err != nil {
		t.Fatalf("FailedAttempts failed: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 failed attempt, got %d", attempts)
	}

	if err := store.Record(ctx, sig, ledger.OutcomeSucceeded, "https://notion.so/p2", ""); err != nil {
		t.Fatalf("Record success failed: %v", err)
	}
	entry, err := store.Get(ctx, sig)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.Outcome != ledger.OutcomeSucceeded {
		t.Fatalf("retry success not recorded, outcome %q", entry.Outcome)
	}
	if entry.ErrorMessage != "" {
		t.Fatalf("stale error message retained: %q", entry.ErrorMessage)
	}
	if entry.Attempts != 2 {
		t.Fatalf("expected attempts=2, got %d", entry.Attempts)
	}
	if attempts, _ := store.FailedAttempts(ctx, sig); attempts != 0 {
		t.Fatalf("succeeded entry should report zero failed attempts, got %d", attempts)
	}
}

func TestStatsWindow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	if err := store.Record(ctx, testSig("/recordings/a.m4a", 1), ledger.OutcomeSucceeded, "", ""); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, testSig("/recordings/b.m4a", 2), ledger.OutcomeFailed, "", "boom"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	stats, err := store.Stats(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 2 || stats.Succeeded != 1 || stats.Failed != 1 || stats.InWindow != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	zero, err := store.Stats(ctx, 0)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if zero.InWindow != 0 {
		t.Fatalf("zero window should count nothing recent, got %d", zero.InWindow)
	}
}

func TestCleanupOlderThan(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	if err := store.Record(ctx, testSig("/recordings/a.m4a", 1), ledger.OutcomeSucceeded, "", ""); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	// Entries were just written, so a 30-day cutoff removes nothing.
	deleted, err := store.CleanupOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("CleanupOlderThan failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected no deletions, got %d", deleted)
	}

	if deleted, err = store.Clear(ctx); err != nil || deleted != 1 {
		t.Fatalf("Clear: deleted=%d err=%v", deleted, err)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	for i, path := range []string{"/recordings/a.m4a", "/recordings/b.m4a", "/recordings/c.m4a"} {
		if err := store.Record(ctx, testSig(path, int64(i+1)), ledger.OutcomeSucceeded, "", ""); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Path != "/recordings/c.m4a" {
		t.Fatalf("expected newest entry first, got %q", entries[0].Path)
	}
}
