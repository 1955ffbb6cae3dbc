// Package swap decides portfolio membership: it admits the strongest
// candidate and, when the portfolio is full, evicts the weakest member.
package swap

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/db"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// Store is the persistence the arbiter needs: a consistent snapshot read and
// an all-or-nothing compare-and-swap write.
type Store interface {
	LoadPortfolio(ctx context.Context, projectID uuid.UUID) (*types.Portfolio, error)
	CommitSwap(ctx context.Context, projectID uuid.UUID, expectedVersion int64, plan types.SwapPlan) error
}

// Arbiter runs the single-slot eviction protocol for one portfolio size.
type Arbiter struct {
	store    Store
	capacity int
	logger   *zap.Logger
}

// NewArbiter creates an arbiter. Capacity must be at least 1.
func NewArbiter(store Store, capacity int, logger *zap.Logger) (*Arbiter, error) {
	if store == nil {
		return nil, fmt.Errorf("swap arbiter requires a store")
	}
	if capacity < 1 {
		return nil, fmt.Errorf("portfolio capacity must be at least 1, got %d", capacity)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arbiter{store: store, capacity: capacity, logger: logger}, nil
}

// Capacity returns the configured portfolio size.
func (a *Arbiter) Capacity() int {
	return a.capacity
}

// Evaluate performs at most one portfolio transition for the project using
// already gated and scored candidates. Concurrent calls for the same project
// are detected by the store's version check and surface as
// *types.PersistenceConflictError; the portfolio is then left untouched.
func (a *Arbiter) Evaluate(ctx context.Context, projectID uuid.UUID, ranked []types.CandidateOpportunity) (*types.SwapResult, error) {
	result := &types.SwapResult{ProjectID: projectID}

	best := pickBest(ranked)
	if best == nil {
		result.Outcome = types.OutcomeNoCandidates
		return result, nil
	}
	result.Best = best

	portfolio, err := a.store.LoadPortfolio(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	result.Version = portfolio.Version

	active := portfolio.Active()
	if err := checkInvariants(projectID, active, a.capacity); err != nil {
		return nil, err
	}

	if existing := portfolio.Find(best.Term); existing != nil && existing.IsActive() {
		result.Outcome = types.OutcomeAlreadyActive
		return result, nil
	}

	plan := types.SwapPlan{
		Admit:    admitSpec(best, portfolio.Find(best.Term)),
		Capacity: a.capacity,
	}

	if len(active) < a.capacity {
		result.Outcome = types.OutcomeAdmitted
	} else {
		weakest := pickWeakest(active)
		result.Weakest = weakest
		if best.Score <= weakest.Score {
			result.Outcome = types.OutcomeNoSwap
			a.logger.Debug("no swap",
				zap.String("project_id", projectID.String()),
				zap.String("term", best.Term),
				zap.Float64("score", best.Score),
				zap.Float64("weakest_score", weakest.Score))
			return result, nil
		}
		plan.PauseID = weakest.ID
		result.Outcome = types.OutcomeSwapped
	}

	// A cancelled cycle must not write anything.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := a.store.CommitSwap(ctx, projectID, portfolio.Version, plan); err != nil {
		return nil, commitError(projectID, plan, err)
	}
	result.Version = portfolio.Version + 1

	fields := []zap.Field{
		zap.String("project_id", projectID.String()),
		zap.String("outcome", string(result.Outcome)),
		zap.String("term", best.Term),
		zap.Float64("score", best.Score),
	}
	if result.Weakest != nil {
		fields = append(fields, zap.String("evicted", result.Weakest.Term), zap.Float64("evicted_score", result.Weakest.Score))
	}
	a.logger.Info("portfolio updated", fields...)

	return result, nil
}

// pickBest returns the highest scoring candidate; the earliest wins ties.
func pickBest(ranked []types.CandidateOpportunity) *types.CandidateOpportunity {
	var best *types.CandidateOpportunity
	for i := range ranked {
		if best == nil || ranked[i].Score > best.Score {
			best = &ranked[i]
		}
	}
	if best == nil {
		return nil
	}
	chosen := *best
	return &chosen
}

// pickWeakest returns the lowest scoring active member. Ties go to the oldest
// UpdatedAt, then to the lexicographically smallest term.
func pickWeakest(active []types.ActiveKeyword) *types.ActiveKeyword {
	if len(active) == 0 {
		return nil
	}
	sorted := make([]types.ActiveKeyword, len(active))
	copy(sorted, active)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score < sorted[j].Score
		}
		if !sorted[i].UpdatedAt.Equal(sorted[j].UpdatedAt) {
			return sorted[i].UpdatedAt.Before(sorted[j].UpdatedAt)
		}
		return sorted[i].Term < sorted[j].Term
	})
	weakest := sorted[0]
	return &weakest
}

func admitSpec(best *types.CandidateOpportunity, existing *types.ActiveKeyword) types.AdmitSpec {
	admit := types.AdmitSpec{
		Term:      best.Term,
		Score:     best.Score,
		TargetURL: best.TargetURL,
	}
	if existing != nil {
		id := existing.ID
		admit.ReactivateID = &id
		if admit.TargetURL == "" {
			admit.TargetURL = existing.TargetURL
		}
	}
	return admit
}

// commitError classifies a rejected commit. Capacity and duplicate-term
// rejections mean the plan would break a portfolio invariant.
func commitError(projectID uuid.UUID, plan types.SwapPlan, err error) error {
	switch {
	case errors.Is(err, db.ErrVersionConflict):
		return &types.PersistenceConflictError{ProjectID: projectID.String(), Cause: err}
	case errors.Is(err, db.ErrCapacityExceeded):
		return &types.InvariantViolation{
			ProjectID: projectID.String(),
			Rule:      types.RuleCapacityExceeded,
			Detail:    fmt.Sprintf("admitting %q would exceed capacity %d", plan.Admit.Term, plan.Capacity),
		}
	case errors.Is(err, db.ErrDuplicateKeyword):
		return &types.InvariantViolation{
			ProjectID: projectID.String(),
			Rule:      types.RuleDuplicateActive,
			Detail:    fmt.Sprintf("term %q is already in the portfolio", plan.Admit.Term),
		}
	default:
		return fmt.Errorf("failed to commit swap: %w", err)
	}
}

// checkInvariants rejects snapshots that already break the portfolio rules.
func checkInvariants(projectID uuid.UUID, active []types.ActiveKeyword, capacity int) error {
	if len(active) > capacity {
		return &types.InvariantViolation{
			ProjectID: projectID.String(),
			Rule:      types.RuleCapacityExceeded,
			Detail:    fmt.Sprintf("%d active keywords, capacity %d", len(active), capacity),
		}
	}
	seen := make(map[string]bool, len(active))
	for _, k := range active {
		if seen[k.Term] {
			return &types.InvariantViolation{
				ProjectID: projectID.String(),
				Rule:      types.RuleDuplicateActive,
				Detail:    fmt.Sprintf("term %q is active more than once", k.Term),
			}
		}
		seen[k.Term] = true
	}
	return nil
}
