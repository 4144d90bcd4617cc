// Package linking suggests connections between processed recordings and
// existing activities. Suggestions are heuristic: recording date, frequent
// transcript keywords, duration class, mentioned locations, and page tags,
// each carrying a confidence score and a human-readable rationale.
package linking
