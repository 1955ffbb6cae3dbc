package strikezone

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// Remediator produces remediation content for a diagnosed gap.
type Remediator interface {
	RequestRemediation(ctx context.Context, gap types.GapType, rc types.RemediationContext) (string, error)
}

// BaselineSource supplies competitor baselines for a term.
type BaselineSource interface {
	Baseline(ctx context.Context, term string) (types.Baseline, error)
}

// StaticBaselines serves precomputed baselines keyed by term.
type StaticBaselines map[string]types.Baseline

// Baseline implements BaselineSource.
func (s StaticBaselines) Baseline(_ context.Context, term string) (types.Baseline, error) {
	b, ok := s[term]
	if !ok {
		return types.Baseline{}, &types.UpstreamFetchError{
			Source:  "competitors",
			Message: fmt.Sprintf("no competitor baseline for %q", term),
		}
	}
	return b, nil
}

// Diagnostic picks one near-miss page per run and classifies its gap.
type Diagnostic struct {
	params     Params
	remediator Remediator
	logger     *zap.Logger
}

// NewDiagnostic creates a diagnostic. A nil remediator disables content
// generation; diagnoses are still produced.
func NewDiagnostic(params Params, remediator Remediator, logger *zap.Logger) *Diagnostic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Diagnostic{params: params, remediator: remediator, logger: logger}
}

// Diagnose selects the highest-impact page in the strike zone and classifies
// it against its baseline. It returns nil when no page is in the zone. Only
// the selected page's baseline is fetched. Remediation failures are recorded
// on the Diagnosis and never returned.
func (d *Diagnostic) Diagnose(ctx context.Context, pages []types.PageSnapshot, baselines BaselineSource) (*types.Diagnosis, error) {
	target := SelectTarget(pages, d.params)
	if target == nil {
		return nil, nil
	}
	baseline, err := baselines.Baseline(ctx, target.Term)
	if err != nil {
		return nil, err
	}

	diagnosis := &types.Diagnosis{
		Term:   target.Term,
		URL:    target.URL,
		Rank:   target.Rank,
		Impact: target.Impact(),
		Gap:    Classify(*target, baseline, d.params),
	}

	if diagnosis.Gap == types.GapNone || d.remediator == nil {
		return diagnosis, nil
	}

	rc := types.RemediationContext{
		Term:         target.Term,
		URL:          target.URL,
		Title:        target.Title,
		WordCount:    target.WordCount,
		CompetitorWC: baseline.CompetitorAvgWordCount,
	}
	if deficit := baseline.CompetitorAvgWordCount - target.WordCount; deficit > 0 {
		rc.WordDeficit = deficit
	}

	text, err := d.remediator.RequestRemediation(ctx, diagnosis.Gap, rc)
	if err != nil {
		var remErr *types.RemediationError
		if !errors.As(err, &remErr) {
			err = &types.RemediationError{Gap: diagnosis.Gap, Message: "content generation failed", Cause: err}
		}
		d.logger.Warn("remediation failed",
			zap.String("term", target.Term),
			zap.String("gap", string(diagnosis.Gap)),
			zap.Error(err))
		diagnosis.RemediationError = err.Error()
		return diagnosis, nil
	}
	diagnosis.Remediation = text
	return diagnosis, nil
}
