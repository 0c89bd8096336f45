// Package config loads, normalizes, and validates gearbox configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and derives the EasiEdit staging directories
// from the converter executable's location when they are not set explicitly.
//
// A missing or unparsable settings file degrades to defaults with a warning
// instead of failing startup; only structurally invalid values (negative
// timeouts, unknown log formats) are load errors. Existence of the converter
// executable and the vehicles root is checked lazily by the operations that
// need them, before any filesystem mutation.
package config
