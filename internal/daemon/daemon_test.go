package daemon_test

import (
	"context"
	"testing"
	"time"

	"murmur/internal/daemon"
	"murmur/internal/logging"
	"murmur/internal/monitor"
	"murmur/internal/pipeline"
	"murmur/internal/scanner"
	"murmur/internal/services/whisper"
	"murmur/internal/signature"
	"murmur/internal/testsupport"
)

type noopProcessor struct{}

func (noopProcessor) Process(context.Context, string) (*pipeline.Result, error) {
	return &pipeline.Result{Transcript: &whisper.Transcript{Text: "ok"}}, nil
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenLedger(t, cfg)
	logger := logging.NewNop()

	source := scanner.New(cfg, store, logging.NewNop())
	checker := signature.NewChecker(cfg.MinFileAge(), signature.WithSettleDelay(time.Millisecond))
	mon := monitor.New(cfg, source, checker, noopProcessor{}, store, logging.NewNop())

	d, err := daemon.New(cfg, store, logger, mon)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status()
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected constructor error")
	}
}
