// Package engine orchestrates the decision cycles for every project: the
// swap cycle, the strike zone diagnostic and conflict adjudication.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/config"
	"github.com/jonathan/keyword-portfolio/internal/db"
	"github.com/jonathan/keyword-portfolio/internal/fetch"
	"github.com/jonathan/keyword-portfolio/internal/metrics"
	"github.com/jonathan/keyword-portfolio/internal/strikezone"
	"github.com/jonathan/keyword-portfolio/internal/swap"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// CandidateSource supplies keyword opportunities for a project.
type CandidateSource interface {
	FetchCandidates(ctx context.Context, project *types.Project) ([]types.CandidateOpportunity, error)
}

// RankingSource supplies the positions a project's own pages hold.
type RankingSource interface {
	FetchRankings(ctx context.Context, project *types.Project) ([]types.RankedPage, error)
}

// PageSource extracts on-page facts for the project's own pages.
type PageSource interface {
	Analyze(ctx context.Context, url string) (*fetch.PageFacts, error)
}

// BaselineFactory returns the competitor baseline source for a project.
type BaselineFactory func(project *types.Project) strikezone.BaselineSource

// Publisher applies redirect directives to the live site.
type Publisher interface {
	ApplyRedirect(ctx context.Context, d types.RedirectDirective) error
}

// PublisherFactory returns the publisher for a project's own site. Projects
// never share a publisher target.
type PublisherFactory func(project *types.Project) (Publisher, error)

// Deps are the collaborators of an Engine. Store and Candidates are
// required; the strike zone and conflict cycles need Rankings as well.
type Deps struct {
	Store      db.Store
	Candidates CandidateSource
	Rankings   RankingSource
	Pages      PageSource
	Baselines  BaselineFactory
	Remediator strikezone.Remediator
	Publishers PublisherFactory
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Options holds the engine's runtime limits.
type Options struct {
	Capacity      int
	CycleTimeout  time.Duration
	FetchAttempts int
	FetchBackoff  time.Duration
	MaxParallel   int
	Tuning        config.Tuning
}

// DefaultOptions returns the production limits.
func DefaultOptions() Options {
	return Options{
		Capacity:      10,
		CycleTimeout:  2 * time.Minute,
		FetchAttempts: 3,
		FetchBackoff:  2 * time.Second,
		MaxParallel:   4,
		Tuning:        config.DefaultTuning(),
	}
}

// Engine runs decision cycles. It is safe for concurrent use; at most one
// swap cycle per project is in flight at a time within a process.
type Engine struct {
	deps       Deps
	opts       Options
	arbiter    *swap.Arbiter
	diagnostic *strikezone.Diagnostic
	logger     *zap.Logger

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}
}

// New creates an Engine.
func New(deps Deps, opts Options) (*Engine, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("engine requires a store")
	}
	if deps.Candidates == nil {
		return nil, fmt.Errorf("engine requires a candidate source")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.FetchAttempts < 1 {
		opts.FetchAttempts = 1
	}
	if opts.MaxParallel < 1 {
		opts.MaxParallel = 1
	}
	if err := opts.Tuning.Validate(); err != nil {
		return nil, err
	}

	arbiter, err := swap.NewArbiter(deps.Store, opts.Capacity, deps.Logger.Named("swap"))
	if err != nil {
		return nil, err
	}
	return &Engine{
		deps:       deps,
		opts:       opts,
		arbiter:    arbiter,
		diagnostic: strikezone.NewDiagnostic(opts.Tuning.StrikeZone, deps.Remediator, deps.Logger.Named("strikezone")),
		logger:     deps.Logger,
		locks:      make(map[uuid.UUID]chan struct{}),
	}, nil
}

// lockProject waits for the project's swap slot. The wait ends early when
// ctx is done. The returned func releases the slot.
func (e *Engine) lockProject(ctx context.Context, id uuid.UUID) (func(), error) {
	e.locksMu.Lock()
	slot, ok := e.locks[id]
	if !ok {
		slot = make(chan struct{}, 1)
		e.locks[id] = slot
	}
	e.locksMu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// cycleContext bounds one cycle by CycleTimeout.
func (e *Engine) cycleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.CycleTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.CycleTimeout)
}

// timeoutError marks err retryable when the cycle ran out of time, wherever
// the deadline hit. Errors that already carry a retry decision are kept.
func (e *Engine) timeoutError(cycleCtx context.Context, kind types.CycleKind, err error) error {
	if err == nil || !errors.Is(cycleCtx.Err(), context.DeadlineExceeded) {
		return err
	}
	var timeout *types.CycleTimeoutError
	if errors.As(err, &timeout) {
		return err
	}
	return &types.CycleTimeoutError{Kind: kind, Timeout: e.opts.CycleTimeout.String(), Cause: err}
}

// activeProject loads a project and refuses inactive ones.
func (e *Engine) activeProject(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	project, err := e.deps.Store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.Active {
		return nil, fmt.Errorf("project %s: %w", id, db.ErrProjectInactive)
	}
	return project, nil
}

// record persists and observes a finished cycle. Failures here are logged
// and never change the cycle's outcome.
func (e *Engine) record(ctx context.Context, run types.CycleRun) {
	e.deps.Metrics.ObserveCycle(run.Kind, run.Status, run.FinishedAt.Sub(run.StartedAt))

	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.deps.Store.RecordCycle(recCtx, &run); err != nil {
		e.logger.Warn("failed to record cycle",
			zap.String("project_id", run.ProjectID.String()),
			zap.String("kind", string(run.Kind)),
			zap.Error(err))
	}
}

// finish builds the cycle record for a result and logs it.
func (e *Engine) finish(ctx context.Context, projectID uuid.UUID, kind types.CycleKind, started time.Time, status types.CycleStatus, summary string, err error) {
	if err != nil {
		status = types.CycleFailed
		summary = err.Error()
		e.logger.Error("cycle failed",
			zap.String("project_id", projectID.String()),
			zap.String("kind", string(kind)),
			zap.Bool("retryable", types.IsRetryable(err)),
			zap.Error(err))
	} else {
		e.logger.Info("cycle finished",
			zap.String("project_id", projectID.String()),
			zap.String("kind", string(kind)),
			zap.String("status", string(status)),
			zap.String("summary", summary))
	}
	e.record(ctx, types.CycleRun{
		ProjectID:  projectID,
		Kind:       kind,
		Status:     status,
		Summary:    summary,
		StartedAt:  started,
		FinishedAt: time.Now(),
	})
}
