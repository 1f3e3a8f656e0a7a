// Package logging assembles structured slog loggers and formatting helpers used
// across vidset.
//
// It owns the configurable console/JSON/colour handlers, centralizes level and
// output plumbing, and exposes the standard field keys so pipeline code tags
// log lines with run IDs, video IDs, and frame indexes the same way
// everywhere. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
package logging
