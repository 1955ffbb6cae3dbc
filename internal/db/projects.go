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

const projectColumns = `id, owner_ref, domain, authority_budget, active, portfolio_version, created_at, updated_at`

func scanProject(row pgx.Row) (*types.Project, error) {
	var p types.Project
	err := row.Scan(&p.ID, &p.OwnerRef, &p.Domain, &p.AuthorityBudget, &p.Active,
		&p.PortfolioVersion, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject onboards a new active project with an empty portfolio.
func (db *DB) CreateProject(ctx context.Context, req *types.CreateProjectRequest) (*types.Project, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO projects (owner_ref, domain, authority_budget)
		 VALUES ($1, $2, $3)
		 RETURNING `+projectColumns,
		req.OwnerRef, req.Domain, req.AuthorityBudget,
	)
	p, err := scanProject(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateProject
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// ListActiveProjects returns every active project ordered by creation time.
func (db *DB) ListActiveProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE active ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// UpdateAuthorityBudget sets the project's Domain Authority.
func (db *DB) UpdateAuthorityBudget(ctx context.Context, id uuid.UUID, budget int) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE projects SET authority_budget = $2, updated_at = NOW() WHERE id = $1`,
		id, budget)
	if err != nil {
		return fmt.Errorf("failed to update authority budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// SetProjectActive activates or deactivates a project. Projects are never deleted.
func (db *DB) SetProjectActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE projects SET active = $2, updated_at = NOW() WHERE id = $1`,
		id, active)
	if err != nil {
		return fmt.Errorf("failed to update project state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}
