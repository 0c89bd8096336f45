// Package logging configures slog output for gearbox.
//
// It provides a console handler that renders compact key=value lines, a JSON
// handler for machine consumption, helpers for component-scoped loggers, and
// context-derived attributes (vehicle, operation id) so related log lines can
// be correlated across a conversion or deployment run.
package logging
