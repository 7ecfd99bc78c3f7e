package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the history database at path, creating
// parent directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// BeginRun inserts a new run row in the running state.
func (s *Store) BeginRun(ctx context.Context, runID, root string, startedAt time.Time, discovered int) error {
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (run_id, root, started_at, discovered, status)
         VALUES (?, ?, ?, ?, ?)`,
		runID,
		root,
		startedAt.UTC().Format(time.RFC3339Nano),
		discovered,
		StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun records final counters and a terminal status for a run.
func (s *Store) FinishRun(ctx context.Context, runID string, finishedAt time.Time, succeeded, failed, deleted, deleteFailed int, status string) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE runs
         SET finished_at = ?, succeeded = ?, failed = ?, deleted = ?, delete_failed = ?, status = ?
         WHERE run_id = ?`,
		finishedAt.UTC().Format(time.RFC3339Nano),
		succeeded,
		failed,
		deleted,
		deleteFailed,
		status,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordEvent appends one per-item outcome for a run.
func (s *Store) RecordEvent(ctx context.Context, event Event) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO run_events (run_id, seq, source_path, phase, outcome, detail, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.RunID,
		event.Seq,
		event.SourcePath,
		event.Phase,
		event.Outcome,
		nullableString(event.Detail),
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run event: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, root, started_at, finished_at,
                discovered, succeeded, failed, deleted, delete_failed, status
         FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunByID fetches a run by its uuid, resolving unique id prefixes as well.
func (s *Store) RunByID(ctx context.Context, runID string) (*Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, root, started_at, finished_at,
                discovered, succeeded, failed, deleted, delete_failed, status
         FROM runs WHERE run_id = ? OR run_id LIKE ? ORDER BY id DESC LIMIT 2`,
		runID,
		runID+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("run id %q is ambiguous", runID)
	}
}

// Events returns the per-item outcomes for a run in sequence order.
func (s *Store) Events(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, seq, source_path, phase, outcome, detail, created_at
         FROM run_events WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event   Event
			detail  sql.NullString
			created string
		)
		if err := rows.Scan(&event.RunID, &event.Seq, &event.SourcePath, &event.Phase, &event.Outcome, &detail, &created); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		event.Detail = detail.String
		event.CreatedAt = parseTimestamp(created)
		events = append(events, event)
	}
	return events, rows.Err()
}

// Prune removes runs (and their events) beyond the newest keep entries.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
	)
	if err := rows.Scan(
		&run.ID, &run.RunID, &run.Root, &started, &finished,
		&run.Discovered, &run.Succeeded, &run.Failed, &run.Deleted, &run.DeleteFailed, &run.Status,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTimestamp(started)
	if finished.Valid {
		run.FinishedAt = parseTimestamp(finished.String)
	}
	return run, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
