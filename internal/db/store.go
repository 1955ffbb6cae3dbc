package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// Store is the persistence contract shared by the Postgres and in-memory
// implementations.
type Store interface {
	CreateProject(ctx context.Context, req *types.CreateProjectRequest) (*types.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*types.Project, error)
	ListActiveProjects(ctx context.Context) ([]types.Project, error)
	UpdateAuthorityBudget(ctx context.Context, id uuid.UUID, budget int) error
	SetProjectActive(ctx context.Context, id uuid.UUID, active bool) error

	ListKeywords(ctx context.Context, projectID uuid.UUID, status types.KeywordStatus) ([]types.ActiveKeyword, error)
	LoadPortfolio(ctx context.Context, projectID uuid.UUID) (*types.Portfolio, error)
	CommitSwap(ctx context.Context, projectID uuid.UUID, expectedVersion int64, plan types.SwapPlan) error

	SaveRankSnapshots(ctx context.Context, projectID uuid.UUID, snaps []types.RankSnapshot) error
	LatestRankSnapshots(ctx context.Context, projectID uuid.UUID) ([]types.RankSnapshot, error)

	RecordCycle(ctx context.Context, run *types.CycleRun) error
	ListCycles(ctx context.Context, projectID uuid.UUID, limit int) ([]types.CycleRun, error)
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*MemStore)(nil)
)
