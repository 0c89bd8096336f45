// Package status persists per-vehicle deployment records in SQLite.
//
// The Store tracks which vehicles have had modified definition files
// installed over their originals, when, and with which files. Records are
// upsert-only; they survive restarts and are removed only by the explicit
// clear operation. Deployment state is deliberately decoupled from the
// filesystem: clearing the record does not touch deployed files.
//
// A missing database is created fresh. A database that cannot be opened or
// whose schema cannot be verified is moved aside and recreated, so a corrupt
// record file degrades to an empty store instead of failing the application.
package status
