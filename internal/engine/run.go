package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// ProjectReport collects the outcome of every cycle run for one project.
type ProjectReport struct {
	ProjectID uuid.UUID              `json:"project_id"`
	Swap      *types.SwapResult      `json:"swap,omitempty"`
	Diagnosis *types.Diagnosis       `json:"diagnosis,omitempty"`
	Verdicts  []types.Verdict        `json:"verdicts,omitempty"`
	Freshness *types.FreshnessReport `json:"freshness,omitempty"`
	Errors    []string               `json:"errors,omitempty"`
}

// RunCycle runs one cycle kind for a project and returns its result.
func (e *Engine) RunCycle(ctx context.Context, projectID uuid.UUID, kind types.CycleKind) (any, error) {
	switch kind {
	case types.CycleSwap:
		return e.RunSwapCycle(ctx, projectID)
	case types.CycleStrikeZone:
		return e.RunStrikeZoneCycle(ctx, projectID)
	case types.CycleConflict:
		return e.RunConflictCycle(ctx, projectID)
	case types.CycleFreshness:
		return e.RunFreshnessCycle(ctx, projectID)
	default:
		return nil, fmt.Errorf("unknown cycle kind %q", kind)
	}
}

// RunProject runs the swap, strike zone, conflict and freshness cycles for a
// project in that order. Each cycle is independent: a failure is reported and
// the next cycle still runs. Cycles whose sources are not configured are
// skipped.
func (e *Engine) RunProject(ctx context.Context, projectID uuid.UUID) (*ProjectReport, error) {
	report := &ProjectReport{ProjectID: projectID}
	var errs error
	note := func(kind types.CycleKind, err error) {
		if err == nil {
			return
		}
		err = fmt.Errorf("%s cycle: %w", kind, err)
		report.Errors = append(report.Errors, err.Error())
		errs = multierr.Append(errs, err)
	}

	var err error
	report.Swap, err = e.RunSwapCycle(ctx, projectID)
	note(types.CycleSwap, err)

	if e.deps.Rankings != nil && e.deps.Pages != nil && e.deps.Baselines != nil {
		report.Diagnosis, err = e.RunStrikeZoneCycle(ctx, projectID)
		note(types.CycleStrikeZone, err)
	}
	if e.deps.Rankings != nil {
		report.Verdicts, err = e.RunConflictCycle(ctx, projectID)
		note(types.CycleConflict, err)

		report.Freshness, err = e.RunFreshnessCycle(ctx, projectID)
		note(types.CycleFreshness, err)
	}
	return report, errs
}

// RunAll runs every active project with bounded parallelism. One project's
// failure never cancels the others; all failures are combined into the
// returned error.
func (e *Engine) RunAll(ctx context.Context) ([]ProjectReport, error) {
	projects, err := e.deps.Store.ListActiveProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active projects: %w", err)
	}
	e.logger.Info("running cycles", zap.Int("projects", len(projects)), zap.Int("parallel", e.opts.MaxParallel))

	reports := make([]ProjectReport, len(projects))
	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	g.SetLimit(e.opts.MaxParallel)
	for i, p := range projects {
		g.Go(func() error {
			report, err := e.RunProject(ctx, p.ID)
			reports[i] = *report
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("project %s: %w", p.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return reports, errs
}
