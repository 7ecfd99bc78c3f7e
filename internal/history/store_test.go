package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"flacpress/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginAndFinishRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Now().Add(-time.Minute)

	if err := store.BeginRun(ctx, "run-abc", "/music", started, 12); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.FinishRun(ctx, "run-abc", time.Now(), 10, 2, 10, 0, history.StatusCompleted); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.RunID != "run-abc" || run.Root != "/music" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Discovered != 12 || run.Succeeded != 10 || run.Failed != 2 || run.Deleted != 10 {
		t.Fatalf("unexpected counters: %+v", run)
	}
	if run.Status != history.StatusCompleted {
		t.Fatalf("unexpected status: %q", run.Status)
	}
	if run.FinishedAt.IsZero() {
		t.Fatal("expected finished timestamp")
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := store.BeginRun(ctx, id, "/music", time.Now(), 1); err != nil {
			t.Fatalf("BeginRun %s failed: %v", id, err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-3" || runs[1].RunID != "run-2" {
		t.Fatalf("unexpected order: %s, %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestRecordAndFetchEvents(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.BeginRun(ctx, "run-ev", "/music", time.Now(), 2); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	events := []history.Event{
		{RunID: "run-ev", Seq: 1, SourcePath: "/music/a.flac", Phase: history.PhaseConversion, Outcome: "converted"},
		{RunID: "run-ev", Seq: 2, SourcePath: "/music/b.flac", Phase: history.PhaseConversion, Outcome: "conversion failed", Detail: "exit status 1"},
		{RunID: "run-ev", Seq: 3, SourcePath: "/music/a.flac", Phase: history.PhaseDeletion, Outcome: "deleted"},
	}
	for _, event := range events {
		if err := store.RecordEvent(ctx, event); err != nil {
			t.Fatalf("RecordEvent failed: %v", err)
		}
	}

	got, err := store.Events(ctx, "run-ev")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[1].Detail != "exit status 1" {
		t.Fatalf("expected detail preserved, got %q", got[1].Detail)
	}
	if got[2].Phase != history.PhaseDeletion {
		t.Fatalf("unexpected phase: %q", got[2].Phase)
	}
}

func TestRunByIDPrefix(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.BeginRun(ctx, "0a1b2c3d-feed-4bee-9c0f-000000000001", "/music", time.Now(), 1); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	run, err := store.RunByID(ctx, "0a1b2c3d")
	if err != nil {
		t.Fatalf("RunByID failed: %v", err)
	}
	if run == nil {
		t.Fatal("expected run for unique prefix")
	}

	missing, err := store.RunByID(ctx, "ffffffff")
	if err != nil {
		t.Fatalf("RunByID failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2", "run-3", "run-4"} {
		if err := store.BeginRun(ctx, id, "/music", time.Now(), 1); err != nil {
			t.Fatalf("BeginRun failed: %v", err)
		}
	}

	removed, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-4" {
		t.Fatalf("unexpected survivors: %+v", runs)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = store.Close()

	// Reopening the same file succeeds while the version matches.
	store, err = history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	_ = store.Close()
}
