// Package whisper transcribes voice recordings through the OpenAI Whisper
// API. Requests use the verbose JSON response format so per-segment timing
// is available for downstream page rendering.
package whisper
