package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ttsprep/internal/pipeline"
	"ttsprep/internal/services"
)

// RecordRun inserts a run in the running state.
func (s *Store) RecordRun(ctx context.Context, id string, rng pipeline.Range, dataDir string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("run id is required")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, stage, stop_stage, data_dir, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, rng.Start, rng.Stop, dataDir, RunRunning, formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun closes a run, classifying runErr into a terminal status.
func (s *Store) FinishRun(ctx context.Context, id string, runErr error) error {
	status := RunSucceeded
	message := ""
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		status = RunInterrupted
		message = runErr.Error()
	default:
		status = RunFailed
		message = runErr.Error()
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, exit_code = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status, services.ExitCode(runErr), nullableString(message), formatTime(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %q", id)
	}
	return nil
}

// GetRun returns a run by id, or nil when it is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// RecentRuns lists runs newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), selectRuns+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

const selectRuns = `SELECT id, stage, stop_stage, data_dir, status, exit_code, error_message, started_at, finished_at FROM runs`

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		status      string
		errMessage  sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.Stage, &run.StopStage, &run.DataDir, &status, &run.ExitCode, &errMessage, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.Error = errMessage.String
	if ts, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = ts
	}
	if finishedRaw.Valid {
		if ts, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &ts
		}
	}
	return &run, nil
}
