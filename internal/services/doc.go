// Package services defines shared utilities consumed by the conversion,
// deployment, and persistence layers.
//
// Key responsibilities:
//   - Context helpers that stamp vehicle names and operation correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (missing source, conversion timeout, backup, persistence) consistently
//     across the tool.
//
// Use these helpers when wiring new operations so error handling and
// observability stay uniform.
package services
