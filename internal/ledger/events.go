package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ttsprep/internal/pipeline"
)

// RecordEvent stores a step transition. It satisfies pipeline.Observer.
func (s *Store) RecordEvent(ctx context.Context, event pipeline.Event) error {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = s.now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO stage_events (
            run_id, stage_index, stage, step, marker, state,
            duration_ms, exit_code, message, occurred_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.RunID,
		event.StageIndex,
		event.Stage,
		event.Step,
		nullableString(event.Marker),
		string(event.State),
		event.Duration.Milliseconds(),
		event.ExitCode,
		nullableString(event.Message),
		formatTime(occurred),
	)
	if err != nil {
		return fmt.Errorf("insert stage event: %w", err)
	}
	return nil
}

// EventsForRun lists a run's events in the order they happened.
func (s *Store) EventsForRun(ctx context.Context, runID string) ([]StageEvent, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), selectEvents+` WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run events: %w", err)
	}
	return collectEvents(rows)
}

// LastEvents returns the most recent event for every stage step ever recorded,
// ordered by stage index.
func (s *Store) LastEvents(ctx context.Context) ([]StageEvent, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), selectEvents+`
        WHERE id IN (SELECT MAX(id) FROM stage_events GROUP BY stage_index, step)
        ORDER BY stage_index, id`)
	if err != nil {
		return nil, fmt.Errorf("list last events: %w", err)
	}
	return collectEvents(rows)
}

const selectEvents = `SELECT id, run_id, stage_index, stage, step, marker, state, duration_ms, exit_code, message, occurred_at FROM stage_events`

func collectEvents(rows *sql.Rows) ([]StageEvent, error) {
	defer rows.Close()
	var events []StageEvent
	for rows.Next() {
		var (
			ev          StageEvent
			markerPath  sql.NullString
			message     sql.NullString
			durationMS  int64
			occurredRaw string
		)
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.StageIndex, &ev.Stage, &ev.Step, &markerPath, &ev.State, &durationMS, &ev.ExitCode, &message, &occurredRaw); err != nil {
			return nil, fmt.Errorf("scan stage event: %w", err)
		}
		ev.Marker = markerPath.String
		ev.Message = message.String
		ev.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := parseTimeString(occurredRaw); err == nil {
			ev.OccurredAt = ts
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage events: %w", err)
	}
	return events, nil
}
