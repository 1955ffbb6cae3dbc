// Package remediation drafts content fixes for strike zone gaps and stale
// pages with a generative model.
package remediation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/llm"
	"github.com/jonathan/keyword-portfolio/internal/prompts"
	"github.com/jonathan/keyword-portfolio/internal/schemas"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

const promptFile = "remediation.json"

// promptData is the field set the remediation templates reference.
type promptData struct {
	Term                string
	URL                 string
	Title               string
	WordCount           int
	CompetitorWordCount int
	WordDeficit         int
	PreviousRank        int
	CurrentRank         int
}

// GeminiRemediator requests remediation content from an llm.Client.
type GeminiRemediator struct {
	client llm.Client
	logger *zap.Logger
}

// New creates a remediator backed by client.
func New(client llm.Client, logger *zap.Logger) *GeminiRemediator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiRemediator{client: client, logger: logger}
}

// RequestRemediation returns markup or text that closes the gap. Generated
// FAQ markup is checked against the FAQPage schema before it is returned.
func (r *GeminiRemediator) RequestRemediation(ctx context.Context, gap types.GapType, rc types.RemediationContext) (string, error) {
	key, tier, ok := promptFor(gap)
	if !ok {
		return "", &types.RemediationError{Gap: gap, Message: "no remediation for this gap"}
	}

	set, err := prompts.Load(promptFile)
	if err != nil {
		return "", &types.RemediationError{Gap: gap, Message: "prompt unavailable", Cause: err}
	}
	prompt, err := set.Render(key, promptData{
		Term:                rc.Term,
		URL:                 rc.URL,
		Title:               rc.Title,
		WordCount:           rc.WordCount,
		CompetitorWordCount: rc.CompetitorWC,
		WordDeficit:         rc.WordDeficit,
		PreviousRank:        rc.PreviousRank,
		CurrentRank:         rc.CurrentRank,
	})
	if err != nil {
		return "", &types.RemediationError{Gap: gap, Message: "prompt unavailable", Cause: err}
	}

	r.logger.Debug("requesting remediation", zap.String("gap", string(gap)), zap.String("term", rc.Term))

	req := llm.Request{Prompt: prompt, Tier: tier}
	if gap == types.GapMissingStructuredMarkup {
		req.Format = llm.FormatJSON
	}
	text, err := r.client.Generate(ctx, req)
	if err != nil {
		return "", &types.RemediationError{Gap: gap, Message: "generation failed", Cause: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &types.RemediationError{Gap: gap, Message: "empty response"}
	}

	switch gap {
	case types.GapMissingStructuredMarkup:
		if err := schemas.Validate(schemas.FAQPage, text); err != nil {
			return "", &types.RemediationError{Gap: gap, Message: "generated markup is not a valid FAQPage", Cause: err}
		}
	case types.GapTitleMismatch:
		// Models sometimes add commentary after the title.
		text, _, _ = strings.Cut(text, "\n")
		text = strings.Trim(strings.TrimSpace(text), `"`)
	}
	return text, nil
}

func promptFor(gap types.GapType) (string, llm.Tier, bool) {
	switch gap {
	case types.GapMissingStructuredMarkup:
		return "faq-schema", llm.TierDraft, true
	case types.GapContentThin:
		return "thin-content", llm.TierDraft, true
	case types.GapTitleMismatch:
		return "title-rewrite", llm.TierTitle, true
	case types.GapContentStale:
		return "freshness-update", llm.TierDraft, true
	default:
		return "", "", false
	}
}
