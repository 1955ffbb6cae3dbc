package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// SaveRankSnapshots appends one capture of the project's keyword positions.
func (db *DB) SaveRankSnapshots(ctx context.Context, projectID uuid.UUID, snaps []types.RankSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	_, err := db.pool.CopyFrom(ctx,
		pgx.Identifier{"rank_snapshots"},
		[]string{"project_id", "term", "url", "rank", "volume", "cpc", "captured_at"},
		pgx.CopyFromSlice(len(snaps), func(i int) ([]any, error) {
			s := snaps[i]
			return []any{projectID, s.Term, s.URL, s.Rank, s.Volume, s.CPC, s.CapturedAt}, nil
		}))
	if err != nil {
		return fmt.Errorf("failed to save rank snapshots: %w", err)
	}
	return nil
}

// LatestRankSnapshots returns the most recent snapshot of every term the
// project has history for.
func (db *DB) LatestRankSnapshots(ctx context.Context, projectID uuid.UUID) ([]types.RankSnapshot, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT ON (term) project_id, term, url, rank, volume, cpc, captured_at
		 FROM rank_snapshots WHERE project_id = $1
		 ORDER BY term, captured_at DESC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rank snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []types.RankSnapshot
	for rows.Next() {
		var s types.RankSnapshot
		if err := rows.Scan(&s.ProjectID, &s.Term, &s.URL, &s.Rank, &s.Volume, &s.CPC, &s.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rank snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rank snapshots: %w", err)
	}
	return snaps, nil
}
