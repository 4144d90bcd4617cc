package daemonrun_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"murmur/internal/daemonrun"
	"murmur/internal/logs"
	"murmur/internal/testsupport"
)

func TestRunLeavesRunningDaemonFilesAlone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	// Hold the instance lock the way a live daemon would.
	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "murmurd.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("acquire test lock: locked=%v err=%v", locked, err)
	}
	t.Cleanup(func() { _ = lock.Unlock() })

	pidPath := filepath.Join(cfg.Paths.LogDir, "murmur.pid")
	if err := os.WriteFile(pidPath, []byte("4242\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}
	pointer := filepath.Join(cfg.Paths.LogDir, logs.CurrentPointer)
	if err := os.WriteFile(pointer, []byte("live daemon output\n"), 0o644); err != nil {
		t.Fatalf("write log pointer: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := daemonrun.Run(ctx, cfg, daemonrun.Options{LogLevel: "error"}); err == nil {
		t.Fatal("expected second daemon start to fail while the lock is held")
	}

	data, err := os.ReadFile(pidPath)
	if err != nil {
		t.Fatalf("pid file should survive a failed start: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "4242" {
		t.Fatalf("pid file overwritten: %q", got)
	}

	content, err := os.ReadFile(pointer)
	if err != nil {
		t.Fatalf("log pointer should survive a failed start: %v", err)
	}
	if string(content) != "live daemon output\n" {
		t.Fatalf("log pointer repointed: %q", content)
	}
}

func TestRunClaimsRuntimeFilesAfterStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- daemonrun.Run(ctx, cfg, daemonrun.Options{LogLevel: "error"})
	}()

	pidPath := filepath.Join(cfg.Paths.LogDir, "murmur.pid")
	deadline := time.Now().Add(10 * time.Second)
	for {
		if _, err := os.Stat(pidPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("pid file never appeared")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}

	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Fatalf("pid file should be removed on shutdown: %v", err)
	}
}
