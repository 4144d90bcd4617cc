package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// CurrentPointer is the stable name the daemon points at its active
// per-run log file.
const CurrentPointer = "murmur.log"

// runFilePattern matches the per-run log files the daemon writes. The
// embedded timestamp makes lexical order chronological.
const runFilePattern = "murmur-*.log"

// Reader tails the daemon's log directory.
type Reader struct {
	dir string
}

func NewReader(logDir string) *Reader {
	return &Reader{dir: logDir}
}

// Cursor marks a position in a specific log file. Next detects when the
// daemon has rotated to a new run file and restarts the cursor there.
type Cursor struct {
	Path   string
	Offset int64
}

// Chunk holds lines read from the log plus the cursor to resume from.
type Chunk struct {
	Lines  []string
	Cursor Cursor
}

// Resolve returns the path of the active log file. It follows the
// murmur.log pointer when present (symlink or hard link) and otherwise
// falls back to the newest per-run file. An empty path means the daemon
// has not logged yet.
func (r *Reader) Resolve() (string, error) {
	pointer := filepath.Join(r.dir, CurrentPointer)
	if target, err := os.Readlink(pointer); err == nil {
		if !filepath.IsAbs(target) {
			target = filepath.Join(r.dir, target)
		}
		return target, nil
	}
	if info, err := os.Stat(pointer); err == nil && !info.IsDir() {
		return pointer, nil
	}
	matches, err := filepath.Glob(filepath.Join(r.dir, runFilePattern))
	if err != nil {
		return "", fmt.Errorf("list run logs: %w", err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Last returns the trailing lines of the active log file. A limit of
// zero or less returns every line.
func (r *Reader) Last(limit int) (Chunk, error) {
	path, err := r.Resolve()
	if err != nil || path == "" {
		return Chunk{}, err
	}
	lines, offset, err := tailLines(path, limit)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Lines: lines, Cursor: Cursor{Path: path, Offset: offset}}, nil
}

// Next returns lines appended after the cursor, waiting up to wait for
// new output. When the daemon has rotated to a new run file the cursor
// moves to its start, so a follower survives daemon restarts.
func (r *Reader) Next(ctx context.Context, cur Cursor, wait time.Duration) (Chunk, error) {
	if wait < 0 {
		wait = 0
	}
	deadline := time.Now().Add(wait)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		path, err := r.Resolve()
		if err != nil {
			return Chunk{Cursor: cur}, err
		}
		if path != "" && path != cur.Path {
			cur = Cursor{Path: path}
		}
		if cur.Path != "" {
			lines, offset, err := readSince(cur.Path, cur.Offset)
			if err != nil {
				return Chunk{Cursor: cur}, err
			}
			cur.Offset = offset
			if len(lines) > 0 {
				return Chunk{Lines: lines, Cursor: cur}, nil
			}
		}
		if !time.Now().Before(deadline) {
			return Chunk{Cursor: cur}, nil
		}
		select {
		case <-ctx.Done():
			return Chunk{Cursor: cur}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// tailLines reads the final lines of path, keeping at most limit. It
// returns the end-of-file offset so a follower can resume there.
func tailLines(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var window []string
	scanner := newLineScanner(file)
	for scanner.Scan() {
		window = append(window, scanner.Text())
		if limit > 0 && len(window) > limit {
			window = window[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}
	return window, offset, nil
}

// readSince reads complete lines appended after offset.
func readSince(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	scanner := newLineScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, offset, fmt.Errorf("read log file: %w", err)
	}

	end, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, offset, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, end, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
