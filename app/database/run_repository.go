package database

import (
	"fmt"
	"time"
)

// RunLedger persists task execution history.
type RunLedger struct {
	db *DB
}

func NewRunLedger(db *DB) *RunLedger {
	return &RunLedger{db: db}
}

func (r *RunLedger) RecordRun(task string, startedAt, finishedAt time.Time, status, detail string) error {
	_, err := r.db.Exec(`
		INSERT INTO runs (task, started_at, finished_at, status, detail)
		VALUES (?, ?, ?, ?, ?)
	`, task, startedAt, finishedAt, status, detail)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func (r *RunLedger) GetRecentRuns(limit int) ([]Run, error) {
	rows, err := r.db.Query(`
		SELECT id, task, started_at, finished_at, status, detail
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Task, &run.StartedAt, &run.FinishedAt,
			&run.Status, &run.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *RunLedger) GetRunCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}
