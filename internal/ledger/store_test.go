package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"ttsprep/internal/ledger"
	"ttsprep/internal/pipeline"
	"ttsprep/internal/services"
	"ttsprep/internal/testsupport"
)

func TestRecordAndFinishRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	if err := store.RecordRun(ctx, "run-1", pipeline.Range{Start: 2, Stop: 4}, cfg.Paths.DataDir); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	run, err := store.GetRun(ctx, "run-1")
	if err != nil || run == nil {
		t.Fatalf("GetRun: run=%v err=%v", run, err)
	}
	if run.Status != ledger.RunRunning || run.Stage != 2 || run.StopStage != 4 || run.FinishedAt != nil {
		t.Fatalf("unexpected running row %+v", run)
	}

	runErr := fmt.Errorf("stage 2: %w", &services.ExitError{Tool: "python3", Code: 2})
	if err := store.FinishRun(ctx, "run-1", runErr); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	run, err = store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != ledger.RunFailed || run.ExitCode != 2 || run.Error == "" || run.FinishedAt == nil {
		t.Fatalf("unexpected finished row %+v", run)
	}
}

func TestFinishRunClassifiesStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	tests := []struct {
		id       string
		err      error
		want     ledger.RunStatus
		wantExit int
	}{
		{id: "ok", err: nil, want: ledger.RunSucceeded, wantExit: 0},
		{id: "interrupted", err: fmt.Errorf("stage 1 interrupted: %w", context.Canceled), want: ledger.RunInterrupted, wantExit: 130},
		{id: "failed", err: errors.New("boom"), want: ledger.RunFailed, wantExit: 1},
	}
	for _, tt := range tests {
		if err := store.RecordRun(ctx, tt.id, pipeline.DefaultRange(), cfg.Paths.DataDir); err != nil {
			t.Fatalf("RecordRun %s: %v", tt.id, err)
		}
		if err := store.FinishRun(ctx, tt.id, tt.err); err != nil {
			t.Fatalf("FinishRun %s: %v", tt.id, err)
		}
		run, err := store.GetRun(ctx, tt.id)
		if err != nil {
			t.Fatalf("GetRun %s: %v", tt.id, err)
		}
		if run.Status != tt.want {
			t.Fatalf("%s: status %s, want %s", tt.id, run.Status, tt.want)
		}
		if run.ExitCode != tt.wantExit {
			t.Fatalf("%s: exit code %d, want %d", tt.id, run.ExitCode, tt.wantExit)
		}
	}

	if err := store.FinishRun(ctx, "missing", nil); err == nil {
		t.Fatal("expected error finishing an unknown run")
	}
	if run, err := store.GetRun(ctx, "missing"); err != nil || run != nil {
		t.Fatalf("expected nil for unknown run, got %v %v", run, err)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.RecordRun(ctx, fmt.Sprintf("run-%d", i), pipeline.DefaultRange(), cfg.Paths.DataDir); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Fatalf("unexpected order %+v", runs)
	}
}

func TestEventsAndLastEvents(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"first", "second"} {
		if err := store.RecordRun(ctx, id, pipeline.DefaultRange(), cfg.Paths.DataDir); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}
	events := []pipeline.Event{
		{RunID: "first", StageIndex: 1, Stage: "prepare-manifest", Step: "prepare-manifest", State: pipeline.StateDone, Duration: 1500 * time.Millisecond},
		{RunID: "first", StageIndex: 2, Stage: "compute-fbank", Step: "compute-fbank", State: pipeline.StateFailed, ExitCode: 1, Message: "exit 1"},
		{RunID: "second", StageIndex: 1, Stage: "prepare-manifest", Step: "prepare-manifest", State: pipeline.StateSkipped},
		{RunID: "second", StageIndex: 2, Stage: "compute-fbank", Step: "compute-fbank", State: pipeline.StateDone},
	}
	for _, ev := range events {
		if err := store.RecordEvent(ctx, ev); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	firstEvents, err := store.EventsForRun(ctx, "first")
	if err != nil {
		t.Fatalf("EventsForRun: %v", err)
	}
	if len(firstEvents) != 2 || firstEvents[0].Duration != 1500*time.Millisecond || firstEvents[1].Message != "exit 1" {
		t.Fatalf("unexpected run events %+v", firstEvents)
	}

	last, err := store.LastEvents(ctx)
	if err != nil {
		t.Fatalf("LastEvents: %v", err)
	}
	if len(last) != 2 {
		t.Fatalf("expected one event per step, got %+v", last)
	}
	if last[0].StageIndex != 1 || last[0].State != string(pipeline.StateSkipped) {
		t.Fatalf("unexpected latest stage 1 event %+v", last[0])
	}
	if last[1].StageIndex != 2 || last[1].State != string(pipeline.StateDone) || last[1].RunID != "second" {
		t.Fatalf("unexpected latest stage 2 event %+v", last[1])
	}
}

func TestEventRequiresKnownRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	err := store.RecordEvent(context.Background(), pipeline.Event{RunID: "ghost", Stage: "x", Step: "x", State: pipeline.StateDone})
	if err == nil {
		t.Fatal("expected foreign key violation for unknown run")
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.RecordRun(context.Background(), "persisted", pipeline.DefaultRange(), cfg.Paths.DataDir); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenLedger(t, cfg)
	if err := reopened.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	run, err := reopened.GetRun(context.Background(), "persisted")
	if err != nil || run == nil {
		t.Fatalf("expected persisted run, got %v %v", run, err)
	}
}

func seedLedger(t *testing.T, path string, version int, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	defer db.Close()
	for _, stmt := range append(stmts, fmt.Sprintf("PRAGMA user_version = %d", version)) {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
}

func TestOpenResetsOlderLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	seedLedger(t, path, 0,
		"CREATE TABLE schema_version (version INTEGER NOT NULL)",
		"INSERT INTO schema_version (version) VALUES (0)",
		"CREATE TABLE runs (id TEXT PRIMARY KEY)",
		"INSERT INTO runs (id) VALUES ('legacy')",
	)

	store, err := ledger.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected legacy history to be dropped, got %+v", runs)
	}
	if err := store.RecordRun(ctx, "fresh", pipeline.DefaultRange(), "data"); err != nil {
		t.Fatalf("RecordRun after reset: %v", err)
	}
}

func TestOpenRejectsNewerLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	seedLedger(t, path, 99, "CREATE TABLE runs (id TEXT PRIMARY KEY)")

	store, err := ledger.OpenPath(path)
	if err == nil {
		_ = store.Close()
		t.Fatal("expected newer ledger to be rejected")
	}
	if !errors.Is(err, ledger.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
