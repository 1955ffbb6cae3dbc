package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// RecordCycle persists the outcome of one cycle run.
func (db *DB) RecordCycle(ctx context.Context, run *types.CycleRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO cycle_runs (id, project_id, kind, status, summary, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.ProjectID, string(run.Kind), string(run.Status), run.Summary,
		run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to record cycle run: %w", err)
	}
	return nil
}

// ListCycles returns the most recent cycle runs for a project, newest first.
func (db *DB) ListCycles(ctx context.Context, projectID uuid.UUID, limit int) ([]types.CycleRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, project_id, kind, status, summary, started_at, finished_at
		 FROM cycle_runs WHERE project_id = $1
		 ORDER BY started_at DESC LIMIT $2`,
		projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycle runs: %w", err)
	}
	defer rows.Close()

	var runs []types.CycleRun
	for rows.Next() {
		var r types.CycleRun
		var kind, status string
		if err := rows.Scan(&r.ID, &r.ProjectID, &kind, &status, &r.Summary,
			&r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cycle run: %w", err)
		}
		r.Kind = types.CycleKind(kind)
		r.Status = types.CycleStatus(status)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cycle runs: %w", err)
	}
	return runs, nil
}
