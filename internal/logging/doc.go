// Package logging builds the slog loggers used across flacpress and holds
// the shared attribute helpers and field name conventions.
package logging
