// Package logging assembles the structured slog loggers used across gavel.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code automatically tags
// log lines with run IDs, stage names, episode GUIDs, and dockets. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
