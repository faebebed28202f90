// Package logging assembles the structured slog loggers shared by every
// snapsort component.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the in-flight file and run ID without threading them by hand.
// A no-op logger is available for tests and wiring code that cannot fail.
package logging
