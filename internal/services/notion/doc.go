// Package notion publishes transcribed recordings as pages in a Notion
// database. Pages carry the transcript body, a metadata line, timestamped
// segment excerpts, and tags derived from the source path and duration.
package notion
