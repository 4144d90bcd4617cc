// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no murmur-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties
//   - Format: container-level metadata (duration, size, bitrate, tags)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result expose the audio properties voice recordings
// care about: duration, codec, sample rate, channels, and recorder tags.
package ffprobe
