package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/keyword-portfolio/internal/strikezone"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// RunStrikeZoneCycle diagnoses the single highest-impact active keyword that
// ranks just below the front page. It returns nil when no active keyword is
// in the zone.
func (e *Engine) RunStrikeZoneCycle(ctx context.Context, projectID uuid.UUID) (*types.Diagnosis, error) {
	started := time.Now()
	cycleCtx, cancel := e.cycleContext(ctx)
	defer cancel()

	diagnosis, err := e.strikeZoneCycle(cycleCtx, projectID)
	err = e.timeoutError(cycleCtx, types.CycleStrikeZone, err)

	status, summary := types.CycleNoAction, "no active keyword in the strike zone"
	if diagnosis != nil {
		summary = fmt.Sprintf("%q at rank %d: %s", diagnosis.Term, diagnosis.Rank, diagnosis.Gap)
		if diagnosis.Gap != types.GapNone {
			status = types.CycleSucceeded
		}
		if diagnosis.Remediation != "" {
			e.deps.Metrics.ObserveDirective("remediation")
		}
	}
	e.finish(ctx, projectID, types.CycleStrikeZone, started, status, summary, err)
	return diagnosis, err
}

func (e *Engine) strikeZoneCycle(ctx context.Context, projectID uuid.UUID) (*types.Diagnosis, error) {
	if e.deps.Rankings == nil || e.deps.Pages == nil || e.deps.Baselines == nil {
		return nil, fmt.Errorf("strike zone cycle requires ranking, page and baseline sources")
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

	// Only the selected target needs on-page facts.
	target := strikezone.SelectTarget(Snapshots(active, rankings), e.opts.Tuning.StrikeZone)
	if target == nil {
		return nil, nil
	}

	facts, err := withRetry(ctx, e.opts.FetchAttempts, e.opts.FetchBackoff, e.logger, "page",
		func(ctx context.Context) (*types.PageSnapshot, error) {
			f, err := e.deps.Pages.Analyze(ctx, target.URL)
			if err != nil {
				return nil, &types.UpstreamFetchError{Source: "page", Message: "failed to analyze " + target.URL, Cause: err}
			}
			snap := *target
			snap.WordCount = f.WordCount
			snap.HasStructuredMarkup = f.HasStructuredMarkup
			snap.Title = f.Title
			return &snap, nil
		})
	if err != nil {
		return nil, err
	}

	return e.diagnostic.Diagnose(ctx, []types.PageSnapshot{*facts}, e.deps.Baselines(project))
}

func (e *Engine) fetchRankings(ctx context.Context, project *types.Project) ([]types.RankedPage, error) {
	return withRetry(ctx, e.opts.FetchAttempts, e.opts.FetchBackoff, e.logger, "rankings",
		func(ctx context.Context) ([]types.RankedPage, error) {
			return e.deps.Rankings.FetchRankings(ctx, project)
		})
}

// Snapshots joins active keywords with the project's rankings on term. When
// a keyword has a target URL the ranking for that URL is used, otherwise the
// best-ranked page for the term. Keywords without a ranking are omitted.
func Snapshots(active []types.ActiveKeyword, rankings []types.RankedPage) []types.PageSnapshot {
	byTerm := make(map[string][]types.RankedPage)
	for _, r := range rankings {
		byTerm[r.Term] = append(byTerm[r.Term], r)
	}

	snaps := make([]types.PageSnapshot, 0, len(active))
	for _, k := range active {
		rows := byTerm[k.Term]
		if len(rows) == 0 {
			continue
		}
		pick := bestRanked(rows)
		if k.TargetURL != "" {
			for _, r := range rows {
				if r.URL == k.TargetURL {
					pick = r
					break
				}
			}
		}
		snaps = append(snaps, types.PageSnapshot{
			Term:   k.Term,
			URL:    pick.URL,
			Rank:   pick.Rank,
			Volume: pick.Volume,
			CPC:    pick.CPC,
		})
	}
	return snaps
}

func bestRanked(rows []types.RankedPage) types.RankedPage {
	best := rows[0]
	for _, r := range rows[1:] {
		if r.Rank < best.Rank {
			best = r
		}
	}
	return best
}
