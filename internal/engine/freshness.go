package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/freshness"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// RunFreshnessCycle records today's positions of the project's active
// keywords, compares them with the previous capture and requests a freshness
// update for the keyword that slipped the furthest. The new capture is saved
// even when nothing decayed so the next run compares against it.
func (e *Engine) RunFreshnessCycle(ctx context.Context, projectID uuid.UUID) (*types.FreshnessReport, error) {
	started := time.Now()
	cycleCtx, cancel := e.cycleContext(ctx)
	defer cancel()

	report, err := e.freshnessCycle(cycleCtx, projectID)
	err = e.timeoutError(cycleCtx, types.CycleFreshness, err)

	status, summary := types.CycleNoAction, "no decayed keywords"
	if report != nil && report.Target != nil {
		status = types.CycleSucceeded
		summary = fmt.Sprintf("%d decayed, %q fell from %d to %d",
			len(report.Decayed), report.Target.Term, report.Target.PreviousRank, report.Target.CurrentRank)
		if report.Remediation != "" {
			e.deps.Metrics.ObserveDirective("freshness")
		}
	}
	e.finish(ctx, projectID, types.CycleFreshness, started, status, summary, err)
	return report, err
}

func (e *Engine) freshnessCycle(ctx context.Context, projectID uuid.UUID) (*types.FreshnessReport, error) {
	if e.deps.Rankings == nil {
		return nil, fmt.Errorf("freshness cycle requires a ranking source")
	}
	project, err := e.activeProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	rankings, err := e.fetchRankings(ctx, project)
	if err != nil {
		return nil, err
	}
	active, err := e.deps.Store.ListKeywords(ctx, projectID, types.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active keywords: %w", err)
	}
	previous, err := e.deps.Store.LatestRankSnapshots(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rank history: %w", err)
	}

	current := freshness.Capture(projectID, active, rankings, time.Now().UTC())
	if err := e.deps.Store.SaveRankSnapshots(ctx, projectID, current); err != nil {
		return nil, fmt.Errorf("failed to save rank snapshots: %w", err)
	}

	report := &types.FreshnessReport{
		Captured: len(current),
		Decayed:  freshness.FindDecayed(previous, current, e.opts.Tuning.Freshness),
	}
	if len(report.Decayed) == 0 {
		return report, nil
	}
	target := report.Decayed[0]
	report.Target = &target

	if e.deps.Remediator == nil {
		return report, nil
	}
	text, err := e.deps.Remediator.RequestRemediation(ctx, types.GapContentStale, types.RemediationContext{
		Term:         target.Term,
		URL:          target.URL,
		PreviousRank: target.PreviousRank,
		CurrentRank:  target.CurrentRank,
	})
	if err != nil {
		var remErr *types.RemediationError
		if !errors.As(err, &remErr) {
			err = &types.RemediationError{Gap: types.GapContentStale, Message: "content generation failed", Cause: err}
		}
		e.logger.Warn("freshness update failed",
			zap.String("project_id", projectID.String()),
			zap.String("term", target.Term),
			zap.Error(err))
		report.RemediationError = err.Error()
		return report, nil
	}
	report.Remediation = text
	return report, nil
}
