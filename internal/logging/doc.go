// Package logging builds the slog loggers used by the daemon and CLI.
//
// It provides a console handler (one line per record, component prefix,
// key=value attrs), a JSON handler for machine consumption, typed attr
// helpers, component loggers, and a retention sweep for old log files.
package logging
