package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/ranking"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// RunSwapCycle fetches candidates for the project, gates and ranks them
// against its authority budget and performs at most one portfolio
// transition. A cycle that fails leaves the portfolio untouched.
func (e *Engine) RunSwapCycle(ctx context.Context, projectID uuid.UUID) (*types.SwapResult, error) {
	started := time.Now()

	// The slot is taken before the cycle clock starts so waiting behind
	// another swap does not use up this cycle's time.
	unlock, err := e.lockProject(ctx, projectID)
	if err != nil {
		e.finish(ctx, projectID, types.CycleSwap, started, types.CycleFailed, "", err)
		return nil, err
	}
	defer unlock()

	cycleCtx, cancel := e.cycleContext(ctx)
	defer cancel()

	result, err := e.swapCycle(cycleCtx, projectID)
	err = e.timeoutError(cycleCtx, types.CycleSwap, err)

	status, summary := types.CycleNoAction, ""
	if result != nil {
		if result.Changed() {
			status = types.CycleSucceeded
		}
		summary = swapSummary(result)
		e.deps.Metrics.ObserveSwap(result.Outcome)
	}
	e.finish(ctx, projectID, types.CycleSwap, started, status, summary, err)
	return result, err
}

func (e *Engine) swapCycle(ctx context.Context, projectID uuid.UUID) (*types.SwapResult, error) {
	project, err := e.activeProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	candidates, err := withRetry(ctx, e.opts.FetchAttempts, e.opts.FetchBackoff, e.logger, "candidates",
		func(ctx context.Context) ([]types.CandidateOpportunity, error) {
			return e.deps.Candidates.FetchCandidates(ctx, project)
		})
	if err != nil {
		return nil, err
	}

	ranked := ranking.GateAndRank(candidates, project.AuthorityBudget, e.opts.Tuning.Scoring)
	e.logger.Debug("candidates ranked",
		zap.String("project_id", projectID.String()),
		zap.Int("fetched", len(candidates)),
		zap.Int("affordable", len(ranked)))

	result, err := e.arbiter.Evaluate(ctx, projectID, ranked)
	var conflict *types.PersistenceConflictError
	if errors.As(err, &conflict) {
		// Another writer moved the portfolio. Re-read and decide once more.
		e.logger.Info("portfolio changed during evaluation, retrying",
			zap.String("project_id", projectID.String()))
		result, err = e.arbiter.Evaluate(ctx, projectID, ranked)
	}
	return result, err
}

func swapSummary(r *types.SwapResult) string {
	switch r.Outcome {
	case types.OutcomeSwapped:
		return fmt.Sprintf("admitted %q (%.2f), paused %q (%.2f)", r.Best.Term, r.Best.Score, r.Weakest.Term, r.Weakest.Score)
	case types.OutcomeAdmitted:
		return fmt.Sprintf("admitted %q (%.2f)", r.Best.Term, r.Best.Score)
	case types.OutcomeNoSwap:
		return fmt.Sprintf("best %q (%.2f) does not beat weakest %q (%.2f)", r.Best.Term, r.Best.Score, r.Weakest.Term, r.Weakest.Score)
	case types.OutcomeAlreadyActive:
		return fmt.Sprintf("best %q is already active", r.Best.Term)
	default:
		return "no affordable candidates"
	}
}
