package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type renderFunc func(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (string, error)

// PageAnalyzer fetches pages and extracts their facts. With browser fallback
// enabled, pages that serve almost no text are rendered in headless Chrome.
type PageAnalyzer struct {
	opts       *Options
	useBrowser bool
	logger     *zap.Logger
	render     renderFunc
}

// NewPageAnalyzer creates a page analyzer.
func NewPageAnalyzer(opts *Options, useBrowser bool, logger *zap.Logger) *PageAnalyzer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageAnalyzer{opts: opts, useBrowser: useBrowser, logger: logger, render: Render}
}

// Analyze fetches url and returns its page facts.
func (a *PageAnalyzer) Analyze(ctx context.Context, url string) (*PageFacts, error) {
	resp, err := Get(ctx, url, a.opts)
	if err != nil {
		return nil, err
	}
	facts, err := AnalyzePage(resp.HTML)
	if err != nil {
		return nil, &Error{URL: url, Status: resp.Status, Message: "failed to analyze page", Cause: err}
	}
	facts.URL = url
	if !a.useBrowser || !needsRender(facts) {
		return facts, nil
	}

	html, err := a.render(ctx, url, a.opts.timeout(), a.logger)
	if err != nil {
		// The served facts are still usable.
		a.logger.Warn("browser fallback failed", zap.String("url", url), zap.Error(err))
		return facts, nil
	}
	rendered, err := AnalyzePage(html)
	if err != nil {
		a.logger.Warn("rendered page unreadable", zap.String("url", url), zap.Error(err))
		return facts, nil
	}
	rendered.URL = url
	a.logger.Debug("using rendered facts",
		zap.String("url", url),
		zap.Int("served_words", facts.WordCount),
		zap.Int("rendered_words", rendered.WordCount))
	return rendered, nil
}
