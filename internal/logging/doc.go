// Package logging assembles structured slog loggers and formatting helpers used
// across jamsync.
//
// It owns the configurable console/JSON handlers, routes optional file output
// through a size-rotated writer, and exposes context helpers so pipeline code
// can tag log lines with the sync run and worksheet being processed. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
