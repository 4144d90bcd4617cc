package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"murmur/internal/config"
	"murmur/internal/ledger"
	"murmur/internal/logging"
	"murmur/internal/pipeline"
	"murmur/internal/scanner"
	"murmur/internal/services"
	"murmur/internal/signature"
)

// Source lists the candidates for one cycle.
type Source interface {
	Scan(ctx context.Context) ([]scanner.Candidate, error)
}

// CompletionChecker decides whether a candidate has finished syncing.
type CompletionChecker interface {
	Complete(ctx context.Context, path string) (bool, signature.Signature, error)
}

// Recorder is the slice of the ledger the monitor writes outcomes through.
type Recorder interface {
	Record(ctx context.Context, sig signature.Signature, outcome ledger.Outcome, remoteURL, errorMessage string) error
}

// ScanResult summarizes one polling cycle.
type ScanResult struct {
	Found     int
	Queued    int
	Succeeded int
	Failed    int
	Deferred  int
	Elapsed   time.Duration
}

// Monitor drives the polling loop: scan, completion-check, process, record.
type Monitor struct {
	source    Source
	checker   CompletionChecker
	processor pipeline.Processor
	recorder  Recorder
	interval  time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a monitor over the given collaborators.
func New(cfg *config.Config, source Source, checker CompletionChecker, processor pipeline.Processor, recorder Recorder, logger *slog.Logger) *Monitor {
	return &Monitor{
		source:    source,
		checker:   checker,
		processor: processor,
		recorder:  recorder,
		interval:  cfg.PollInterval(),
		logger:    logging.NewComponentLogger(logger, "monitor"),
	}
}

// Start begins background polling. It returns an error when the monitor is
// already running.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("monitor already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Run(runCtx)
	}()
	return nil
}

// Stop cancels background polling and waits for the current cycle to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Run executes scan cycles until the context is canceled. Cycle errors are
// logged and the loop keeps going; a wedged cycle must not kill the daemon.
func (m *Monitor) Run(ctx context.Context) {
	for {
		m.logger.Debug("starting scan cycle")
		result, err := m.RunScan(ctx)
		switch {
		case err != nil:
			if errors.Is(err, context.Canceled) {
				return
			}
			m.logger.Error("scan cycle aborted", logging.Error(err))
		case result.Found == 0:
			m.logger.Debug("no new recordings found",
				logging.Duration("elapsed", result.Elapsed))
		default:
			m.logger.Info("scan cycle complete",
				logging.Int("found", result.Found),
				logging.Int("succeeded", result.Succeeded),
				logging.Int("failed", result.Failed),
				logging.Int("deferred", result.Deferred),
				logging.Duration("elapsed", result.Elapsed),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.interval):
		}
	}
}

// RunScan performs a single cycle over the current candidates. Each file is
// handled independently: one failure never blocks the rest of the cycle.
// Only ledger write failures abort the cycle early.
func (m *Monitor) RunScan(ctx context.Context) (ScanResult, error) {
	start := time.Now()
	var result ScanResult

	candidates, err := m.source.Scan(ctx)
	if err != nil {
		result.Elapsed = time.Since(start)
		return result, err
	}
	result.Found = len(candidates)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			result.Elapsed = time.Since(start)
			return result, err
		}
		if err := m.handle(ctx, candidate, &result); err != nil {
			result.Elapsed = time.Since(start)
			return result, err
		}
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

// handle runs one candidate through completion checking, processing, and
// outcome recording. The returned error is non-nil only for cycle-fatal
// conditions (context cancellation, ledger writes).
func (m *Monitor) handle(ctx context.Context, candidate scanner.Candidate, result *ScanResult) error {
	complete, sig, err := m.checker.Complete(ctx, candidate.Path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		// Vanished or unreadable mid-sync: try again next cycle.
		result.Deferred++
		m.logger.Debug("completion check deferred file",
			logging.String("path", candidate.Path), logging.Error(err))
		return nil
	}
	if !complete {
		result.Deferred++
		m.logger.Debug("file still syncing, deferred", logging.String("path", candidate.Path))
		return nil
	}

	result.Queued++
	m.logger.Info("processing recording", logging.String("path", candidate.Path))

	processed, err := m.processor.Process(ctx, candidate.Path)
	switch {
	case err == nil:
		var remoteURL string
		if processed.Page != nil {
			remoteURL = processed.Page.URL
		}
		if err := m.recorder.Record(ctx, sig, ledger.OutcomeSucceeded, remoteURL, ""); err != nil {
			return err
		}
		result.Succeeded++
		m.logger.Info("recording processed",
			logging.String("path", candidate.Path),
			logging.String("page_url", remoteURL),
			logging.Int("suggestions", len(processed.Suggestions)),
		)
	case errors.Is(err, context.Canceled):
		return err
	case services.IsDeferrable(err):
		// Transient failures stay unrecorded so the next cycle retries
		// without burning an attempt.
		result.Deferred++
		m.logger.Warn("processing deferred",
			logging.String("path", candidate.Path), logging.Error(err))
	default:
		if recordErr := m.recorder.Record(ctx, sig, ledger.OutcomeFailed, "", err.Error()); recordErr != nil {
			return recordErr
		}
		result.Failed++
		m.logger.Error("processing failed",
			logging.String("path", candidate.Path), logging.Error(err))
	}
	return nil
}
