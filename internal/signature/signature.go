package signature

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"murmur/internal/services"
)

// Signature is the identity tuple of one observed file state. Two
// observations describe the same state only when all three fields match; a
// recording resynced under the same path with a new size or mtime is a
// different entity.
type Signature struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Compute samples the current signature of a file. The modification time is
// truncated to whole seconds so signatures survive filesystems and stores
// with coarse timestamp resolution. A vanished path is a transient error.
func Compute(path string) (Signature, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Signature{}, services.Wrap(services.ErrValidation, "signature", "resolve path", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Signature{}, services.Wrap(services.ErrNotFound, "signature", "stat", "file vanished mid-scan", err)
		}
		return Signature{}, services.Wrap(services.ErrTransient, "signature", "stat", abs, err)
	}
	if info.IsDir() {
		return Signature{}, services.Wrap(services.ErrValidation, "signature", "stat", abs+" is a directory", nil)
	}
	return Signature{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime().Truncate(time.Second),
	}, nil
}

// Equal reports whether two signatures describe the same file state.
func (s Signature) Equal(other Signature) bool {
	return s.Path == other.Path && s.Size == other.Size && s.ModTime.Equal(other.ModTime)
}

// Checker decides whether a file has finished being written or synced.
type Checker struct {
	minAge time.Duration
	settle time.Duration
	sample func(string) (Signature, error)
	now    func() time.Time
}

// CheckerOption configures optional Checker behavior.
type CheckerOption func(*Checker)

// WithSettleDelay overrides the pause between the two signature samples.
func WithSettleDelay(d time.Duration) CheckerOption {
	return func(c *Checker) {
		if d >= 0 {
			c.settle = d
		}
	}
}

// WithSampler overrides signature sampling (used in tests).
func WithSampler(sample func(string) (Signature, error)) CheckerOption {
	return func(c *Checker) {
		if sample != nil {
			c.sample = sample
		}
	}
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) CheckerOption {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChecker builds a completion checker requiring files to sit unmodified
// for at least minAge before processing.
func NewChecker(minAge time.Duration, opts ...CheckerOption) *Checker {
	c := &Checker{
		minAge: minAge,
		settle: time.Second,
		sample: Compute,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete returns true only when the file's modification time is at least
// the minimum age in the past and two signature samples taken around a short
// settle delay are identical. Age alone is not enough: a large recording can
// sit partially synced for longer than the minimum age, and the resample
// catches files still actively growing.
func (c *Checker) Complete(ctx context.Context, path string) (bool, Signature, error) {
	first, err := c.sample(path)
	if err != nil {
		return false, Signature{}, err
	}
	if c.now().Sub(first.ModTime) < c.minAge {
		return false, first, nil
	}
	if c.settle > 0 {
		select {
		case <-ctx.Done():
			return false, first, ctx.Err()
		case <-time.After(c.settle):
		}
	}
	second, err := c.sample(path)
	if err != nil {
		return false, first, err
	}
	return first.Equal(second), second, nil
}
