package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// MemStore is an in-process Store with the same commit semantics as DB. It
// backs tests and file-driven CLI runs.
type MemStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*types.Project
	keywords map[uuid.UUID][]types.ActiveKeyword
	cycles   map[uuid.UUID][]types.CycleRun
	ranks    map[uuid.UUID][]types.RankSnapshot
	now      func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		projects: make(map[uuid.UUID]*types.Project),
		keywords: make(map[uuid.UUID][]types.ActiveKeyword),
		cycles:   make(map[uuid.UUID][]types.CycleRun),
		ranks:    make(map[uuid.UUID][]types.RankSnapshot),
		now:      time.Now,
	}
}

// SetClock overrides the time source used for timestamps.
func (m *MemStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// CreateProject implements Store.
func (m *MemStore) CreateProject(_ context.Context, req *types.CreateProjectRequest) (*types.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.projects {
		if p.OwnerRef == req.OwnerRef && p.Domain == req.Domain {
			return nil, ErrDuplicateProject
		}
	}
	now := m.now()
	p := &types.Project{
		ID:              uuid.New(),
		OwnerRef:        req.OwnerRef,
		Domain:          req.Domain,
		AuthorityBudget: req.AuthorityBudget,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.projects[p.ID] = p
	out := *p
	return &out, nil
}

// GetProject implements Store.
func (m *MemStore) GetProject(_ context.Context, id uuid.UUID) (*types.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	out := *p
	return &out, nil
}

// ListActiveProjects implements Store.
func (m *MemStore) ListActiveProjects(_ context.Context) ([]types.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Project
	for _, p := range m.projects {
		if p.Active {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// UpdateAuthorityBudget implements Store.
func (m *MemStore) UpdateAuthorityBudget(_ context.Context, id uuid.UUID, budget int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return ErrProjectNotFound
	}
	p.AuthorityBudget = budget
	p.UpdatedAt = m.now()
	return nil
}

// SetProjectActive implements Store.
func (m *MemStore) SetProjectActive(_ context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return ErrProjectNotFound
	}
	p.Active = active
	p.UpdatedAt = m.now()
	return nil
}

// SeedKeyword inserts a keyword row directly, bypassing the swap protocol.
// It is meant for fixtures and imports.
func (m *MemStore) SeedKeyword(projectID uuid.UUID, k types.ActiveKeyword) (types.ActiveKeyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		return types.ActiveKeyword{}, ErrProjectNotFound
	}
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if k.Status == "" {
		k.Status = types.StatusActive
	}
	now := m.now()
	if k.CreatedAt.IsZero() {
		k.CreatedAt = now
	}
	if k.UpdatedAt.IsZero() {
		k.UpdatedAt = k.CreatedAt
	}
	k.ProjectID = projectID
	m.keywords[projectID] = append(m.keywords[projectID], k)
	p.PortfolioVersion++
	return k, nil
}

// ListKeywords implements Store.
func (m *MemStore) ListKeywords(_ context.Context, projectID uuid.UUID, status types.KeywordStatus) ([]types.ActiveKeyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[projectID]; !ok {
		return nil, ErrProjectNotFound
	}
	var out []types.ActiveKeyword
	for _, k := range m.keywords[projectID] {
		if status == "" || k.Status == status {
			out = append(out, k)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	return out, nil
}

// LoadPortfolio implements Store.
func (m *MemStore) LoadPortfolio(_ context.Context, projectID uuid.UUID) (*types.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		return nil, ErrProjectNotFound
	}
	members := make([]types.ActiveKeyword, len(m.keywords[projectID]))
	copy(members, m.keywords[projectID])
	return &types.Portfolio{ProjectID: projectID, Version: p.PortfolioVersion, Members: members}, nil
}

// CommitSwap implements Store. Validation happens before any mutation so a
// rejected plan leaves the portfolio untouched.
func (m *MemStore) CommitSwap(ctx context.Context, projectID uuid.UUID, expectedVersion int64, plan types.SwapPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	p, ok := m.projects[projectID]
	if !ok {
		return ErrProjectNotFound
	}
	if !p.Active {
		return ErrProjectInactive
	}
	if p.PortfolioVersion != expectedVersion {
		return ErrVersionConflict
	}

	rows := m.keywords[projectID]
	pauseIdx, reactivateIdx := -1, -1
	activeCount := 0
	for i, k := range rows {
		if k.IsActive() {
			activeCount++
		}
		if plan.PauseID != uuid.Nil && k.ID == plan.PauseID {
			if !k.IsActive() {
				return ErrVersionConflict
			}
			pauseIdx = i
		}
		if plan.Admit.ReactivateID != nil && k.ID == *plan.Admit.ReactivateID {
			if k.IsActive() {
				return ErrVersionConflict
			}
			reactivateIdx = i
		}
		if plan.Admit.ReactivateID == nil && k.Term == plan.Admit.Term {
			return ErrDuplicateKeyword
		}
	}
	if plan.PauseID != uuid.Nil && pauseIdx < 0 {
		return ErrKeywordNotFound
	}
	if plan.Admit.ReactivateID != nil && reactivateIdx < 0 {
		return ErrKeywordNotFound
	}
	if plan.PauseID != uuid.Nil {
		activeCount--
	}
	activeCount++
	if plan.Capacity > 0 && activeCount > plan.Capacity {
		return ErrCapacityExceeded
	}

	now := m.now()
	if pauseIdx >= 0 {
		rows[pauseIdx].Status = types.StatusPaused
		rows[pauseIdx].UpdatedAt = now
	}
	if reactivateIdx >= 0 {
		rows[reactivateIdx].Status = types.StatusActive
		rows[reactivateIdx].Score = plan.Admit.Score
		rows[reactivateIdx].TargetURL = plan.Admit.TargetURL
		rows[reactivateIdx].UpdatedAt = now
	} else {
		rows = append(rows, types.ActiveKeyword{
			ID:        uuid.New(),
			ProjectID: projectID,
			Term:      plan.Admit.Term,
			Score:     plan.Admit.Score,
			Status:    types.StatusActive,
			TargetURL: plan.Admit.TargetURL,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	m.keywords[projectID] = rows
	p.PortfolioVersion++
	p.UpdatedAt = now
	return nil
}

// SaveRankSnapshots implements Store.
func (m *MemStore) SaveRankSnapshots(_ context.Context, projectID uuid.UUID, snaps []types.RankSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[projectID]; !ok {
		return ErrProjectNotFound
	}
	for _, s := range snaps {
		s.ProjectID = projectID
		m.ranks[projectID] = append(m.ranks[projectID], s)
	}
	return nil
}

// LatestRankSnapshots implements Store.
func (m *MemStore) LatestRankSnapshots(_ context.Context, projectID uuid.UUID) ([]types.RankSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := make(map[string]types.RankSnapshot)
	for _, s := range m.ranks[projectID] {
		if cur, ok := latest[s.Term]; !ok || !s.CapturedAt.Before(cur.CapturedAt) {
			latest[s.Term] = s
		}
	}
	out := make([]types.RankSnapshot, 0, len(latest))
	for _, s := range latest {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out, nil
}

// RecordCycle implements Store.
func (m *MemStore) RecordCycle(_ context.Context, run *types.CycleRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[run.ProjectID]; !ok {
		return ErrProjectNotFound
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	m.cycles[run.ProjectID] = append(m.cycles[run.ProjectID], *run)
	return nil
}

// ListCycles implements Store.
func (m *MemStore) ListCycles(_ context.Context, projectID uuid.UUID, limit int) ([]types.CycleRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	runs := m.cycles[projectID]
	out := make([]types.CycleRun, 0, len(runs))
	for i := len(runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, runs[i])
	}
	return out, nil
}
