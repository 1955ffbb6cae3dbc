package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

const keywordColumns = `id, project_id, term, score, status, target_url, created_at, updated_at`

func scanKeywords(rows pgx.Rows) ([]types.ActiveKeyword, error) {
	defer rows.Close()
	var keywords []types.ActiveKeyword
	for rows.Next() {
		var k types.ActiveKeyword
		var status string
		if err := rows.Scan(&k.ID, &k.ProjectID, &k.Term, &k.Score, &status,
			&k.TargetURL, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		k.Status = types.KeywordStatus(status)
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keywords: %w", err)
	}
	return keywords, nil
}

// ListKeywords returns the project's keywords, optionally filtered by status.
func (db *DB) ListKeywords(ctx context.Context, projectID uuid.UUID, status types.KeywordStatus) ([]types.ActiveKeyword, error) {
	query := `SELECT ` + keywordColumns + ` FROM active_keywords WHERE project_id = $1`
	args := []any{projectID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY score DESC, term`

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	return scanKeywords(rows)
}

// LoadPortfolio reads the project's version and all its keywords in one
// repeatable-read snapshot.
func (db *DB) LoadPortfolio(ctx context.Context, projectID uuid.UUID) (*types.Portfolio, error) {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	portfolio := &types.Portfolio{ProjectID: projectID}
	err = tx.QueryRow(ctx,
		`SELECT portfolio_version FROM projects WHERE id = $1`, projectID,
	).Scan(&portfolio.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio version: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT `+keywordColumns+` FROM active_keywords
		 WHERE project_id = $1 ORDER BY created_at, term`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	members, err := scanKeywords(rows)
	if err != nil {
		return nil, err
	}
	portfolio.Members = members

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit read: %w", err)
	}
	return portfolio, nil
}

// CommitSwap applies a swap plan atomically. The project row is locked and its
// portfolio_version must still equal expectedVersion; otherwise nothing is
// written and ErrVersionConflict is returned. A deactivated project yields
// ErrProjectInactive.
func (db *DB) CommitSwap(ctx context.Context, projectID uuid.UUID, expectedVersion int64, plan types.SwapPlan) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var version int64
	var active bool
	err = tx.QueryRow(ctx,
		`SELECT portfolio_version, active FROM projects WHERE id = $1 FOR UPDATE`, projectID,
	).Scan(&version, &active)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProjectNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock project: %w", err)
	}
	if !active {
		return ErrProjectInactive
	}
	if version != expectedVersion {
		return ErrVersionConflict
	}

	if plan.PauseID != uuid.Nil {
		tag, err := tx.Exec(ctx,
			`UPDATE active_keywords SET status = 'paused', updated_at = NOW()
			 WHERE id = $1 AND project_id = $2 AND status = 'active'`,
			plan.PauseID, projectID)
		if err != nil {
			return fmt.Errorf("failed to pause keyword: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
	}

	if plan.Admit.ReactivateID != nil {
		tag, err := tx.Exec(ctx,
			`UPDATE active_keywords
			 SET status = 'active', score = $3, target_url = $4, updated_at = NOW()
			 WHERE id = $1 AND project_id = $2 AND status = 'paused'`,
			*plan.Admit.ReactivateID, projectID, plan.Admit.Score, plan.Admit.TargetURL)
		if err != nil {
			return fmt.Errorf("failed to reactivate keyword: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
	} else {
		if _, err := tx.Exec(ctx,
			`INSERT INTO active_keywords (project_id, term, score, status, target_url)
			 VALUES ($1, $2, $3, 'active', $4)`,
			projectID, plan.Admit.Term, plan.Admit.Score, plan.Admit.TargetURL); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateKeyword
			}
			return fmt.Errorf("failed to admit keyword: %w", err)
		}
	}

	if plan.Capacity > 0 {
		var count int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM active_keywords WHERE project_id = $1 AND status = 'active'`,
			projectID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count active keywords: %w", err)
		}
		if count > plan.Capacity {
			return ErrCapacityExceeded
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE projects SET portfolio_version = portfolio_version + 1, updated_at = NOW() WHERE id = $1`,
		projectID); err != nil {
		return fmt.Errorf("failed to bump portfolio version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit swap: %w", err)
	}
	return nil
}
