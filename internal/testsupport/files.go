package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteRecording creates an audio fixture file with the given content and a
// modification time far enough in the past to pass completion checks.
func WriteRecording(t testing.TB, dir, name, content string) string {
	t.Helper()
	return WriteRecordingAged(t, dir, name, content, time.Minute)
}

// WriteRecordingAged creates an audio fixture whose mtime is age in the past.
func WriteRecordingAged(t testing.TB, dir, name, content string, age time.Duration) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
	return path
}
