// Package logging assembles structured slog loggers and formatting helpers used
// across ballotlink.
//
// It owns the console and JSON handlers, fans records out to the terminal and
// the persistent log file, stamps every record with the current run id, and
// exposes helpers so the linker can emit conflict and tie warnings with a
// consistent shape. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
