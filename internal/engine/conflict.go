package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/conflict"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// RunConflictCycle finds terms where several of the project's pages compete
// and redirects every loser to the winner. A failed publication does not
// stop the remaining directives; all failures are returned together.
func (e *Engine) RunConflictCycle(ctx context.Context, projectID uuid.UUID) ([]types.Verdict, error) {
	started := time.Now()
	cycleCtx, cancel := e.cycleContext(ctx)
	defer cancel()

	verdicts, published, err := e.conflictCycle(cycleCtx, projectID)
	err = e.timeoutError(cycleCtx, types.CycleConflict, err)

	status, summary := types.CycleNoAction, "no cannibalization found"
	if len(verdicts) > 0 {
		status = types.CycleSucceeded
		summary = fmt.Sprintf("%d conflicting terms, %d redirects published", len(verdicts), published)
	}
	e.finish(ctx, projectID, types.CycleConflict, started, status, summary, err)
	return verdicts, err
}

func (e *Engine) conflictCycle(ctx context.Context, projectID uuid.UUID) ([]types.Verdict, int, error) {
	if e.deps.Rankings == nil {
		return nil, 0, fmt.Errorf("conflict cycle requires a ranking source")
	}
	project, err := e.activeProject(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	rankings, err := e.fetchRankings(ctx, project)
	if err != nil {
		return nil, 0, err
	}

	var publisher Publisher
	if e.deps.Publishers != nil {
		if publisher, err = e.deps.Publishers(project); err != nil {
			return nil, 0, fmt.Errorf("failed to open publisher for %s: %w", project.Domain, err)
		}
	}

	groups := conflict.FindGroups(rankings, e.opts.Tuning.ConflictMaxRank)
	verdicts := make([]types.Verdict, 0, len(groups))
	var errs error
	published := 0
	for _, g := range groups {
		verdict, err := conflict.Adjudicate(g, e.opts.Tuning.ConflictWeights)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("term %q: %w", g.Term, err))
			continue
		}
		verdicts = append(verdicts, *verdict)

		for _, d := range verdict.Directives {
			if publisher == nil {
				continue
			}
			if err := publisher.ApplyRedirect(ctx, d); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("redirect %s: %w", d.LoserURL, err))
				continue
			}
			published++
			e.deps.Metrics.ObserveDirective("redirect")
			e.logger.Info("redirect directive applied",
				zap.String("project_id", projectID.String()),
				zap.String("term", d.Term),
				zap.String("loser", d.LoserURL),
				zap.String("winner", d.WinnerURL))
		}
	}
	return verdicts, published, errs
}
