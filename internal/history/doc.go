// Package history persists cross-run summaries and per-item outcomes in a
// local SQLite database. The store is best-effort: a conversion run never
// fails because history could not be written.
package history
