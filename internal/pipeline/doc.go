// Package pipeline chains the per-file processing steps: container metadata
// via ffprobe, transcription via Whisper, page publishing to Notion, and
// activity link suggestions. The monitor drives it once per candidate.
package pipeline
