package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"murmur/internal/logs"
)

func writeRunLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestResolveFollowsPointer(t *testing.T) {
	dir := t.TempDir()
	target := writeRunLog(t, dir, "murmur-20260101T000000.000Z.log", "hello\n")
	if err := os.Symlink(target, filepath.Join(dir, logs.CurrentPointer)); err != nil {
		t.Fatalf("symlink pointer: %v", err)
	}

	reader := logs.NewReader(dir)
	path, err := reader.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path != target {
		t.Fatalf("expected %q, got %q", target, path)
	}
}

func TestResolveFallsBackToNewestRunFile(t *testing.T) {
	dir := t.TempDir()
	writeRunLog(t, dir, "murmur-20260101T000000.000Z.log", "old\n")
	newest := writeRunLog(t, dir, "murmur-20260102T000000.000Z.log", "new\n")

	reader := logs.NewReader(dir)
	path, err := reader.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path != newest {
		t.Fatalf("expected newest run file %q, got %q", newest, path)
	}
}

func TestResolveEmptyDirectory(t *testing.T) {
	reader := logs.NewReader(t.TempDir())
	path, err := reader.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path != "" {
		t.Fatalf("expected empty path, got %q", path)
	}
}

func TestLastKeepsTrailingLines(t *testing.T) {
	dir := t.TempDir()
	writeRunLog(t, dir, "murmur-20260101T000000.000Z.log", "a\nb\nc\n")

	reader := logs.NewReader(dir)
	chunk, err := reader.Last(2)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if len(chunk.Lines) != 2 || chunk.Lines[0] != "b" || chunk.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", chunk.Lines)
	}
	if chunk.Cursor.Offset == 0 {
		t.Fatal("expected cursor offset to advance")
	}

	all, err := reader.Last(0)
	if err != nil {
		t.Fatalf("last all: %v", err)
	}
	if len(all.Lines) != 3 {
		t.Fatalf("expected every line, got %#v", all.Lines)
	}
}

func TestNextReturnsAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := writeRunLog(t, dir, "murmur-20260101T000000.000Z.log", "start\n")

	reader := logs.NewReader(dir)
	chunk, err := reader.Last(1)
	if err != nil {
		t.Fatalf("last: %v", err)
	}

	done := make(chan struct{})
	go func(cur logs.Cursor) {
		next, err := reader.Next(context.Background(), cur, 5*time.Second)
		if err != nil {
			t.Errorf("next: %v", err)
		}
		if len(next.Lines) != 1 || next.Lines[0] != "later" {
			t.Errorf("unexpected lines: %#v", next.Lines)
		}
		close(done)
	}(chunk.Cursor)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("next did not return")
	}
}

func TestNextFollowsRotation(t *testing.T) {
	dir := t.TempDir()
	writeRunLog(t, dir, "murmur-20260101T000000.000Z.log", "first run\n")

	reader := logs.NewReader(dir)
	chunk, err := reader.Last(1)
	if err != nil {
		t.Fatalf("last: %v", err)
	}

	writeRunLog(t, dir, "murmur-20260102T000000.000Z.log", "second run\n")

	next, err := reader.Next(context.Background(), chunk.Cursor, 0)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if len(next.Lines) != 1 || next.Lines[0] != "second run" {
		t.Fatalf("expected rotated output, got %#v", next.Lines)
	}
	if filepath.Base(next.Cursor.Path) != "murmur-20260102T000000.000Z.log" {
		t.Fatalf("cursor did not move to new run file: %q", next.Cursor.Path)
	}
}

func TestNextHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	writeRunLog(t, dir, "murmur-20260101T000000.000Z.log", "only\n")

	reader := logs.NewReader(dir)
	chunk, err := reader.Last(1)
	if err != nil {
		t.Fatalf("last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reader.Next(ctx, chunk.Cursor, time.Minute); err == nil {
		t.Fatal("expected context error")
	}
}
