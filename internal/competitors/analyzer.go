// Package competitors builds the comparison baseline for a term from the
// pages that currently outrank the project.
package competitors

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/keyword-portfolio/internal/fetch"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// DefaultTopN is how many SERP results are considered per term.
const DefaultTopN = 10

// DefaultParallel bounds concurrent page fetches.
const DefaultParallel = 4

// SERPSource lists the top organic result URLs for a term.
type SERPSource interface {
	TopResults(ctx context.Context, term string, n int) ([]string, error)
}

// PageSource extracts on-page facts from a URL.
type PageSource interface {
	Analyze(ctx context.Context, url string) (*fetch.PageFacts, error)
}

// Options tunes an Analyzer.
type Options struct {
	// OwnDomain is excluded from the results.
	OwnDomain string
	TopN      int
	Parallel  int
	// MarkupMajority is the share of analysed pages above which markup
	// counts as used by competitors.
	MarkupMajority float64
}

// Analyzer computes competitor baselines. It satisfies
// strikezone.BaselineSource.
type Analyzer struct {
	serp   SERPSource
	pages  PageSource
	opts   Options
	logger *zap.Logger
}

// New creates an Analyzer.
func New(serp SERPSource, pages PageSource, opts Options, logger *zap.Logger) *Analyzer {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Parallel <= 0 {
		opts.Parallel = DefaultParallel
	}
	if opts.MarkupMajority <= 0 {
		opts.MarkupMajority = 0.5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{serp: serp, pages: pages, opts: opts, logger: logger}
}

// Baseline fetches the top results for term and summarises them. Pages that
// fail to load are skipped. Zero usable pages is an UpstreamFetchError.
func (a *Analyzer) Baseline(ctx context.Context, term string) (types.Baseline, error) {
	urls, err := a.serp.TopResults(ctx, term, a.opts.TopN)
	if err != nil {
		return types.Baseline{}, err
	}
	urls = excludeDomain(urls, a.opts.OwnDomain)
	if len(urls) == 0 {
		return types.Baseline{}, &types.UpstreamFetchError{
			Source:  "competitors",
			Message: fmt.Sprintf("no competitor results for %q", term),
		}
	}

	var (
		mu    sync.Mutex
		facts []*fetch.PageFacts
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Parallel)
	for _, u := range urls {
		g.Go(func() error {
			f, err := a.pages.Analyze(gCtx, u)
			if err != nil {
				a.logger.Debug("skipping competitor page", zap.String("url", u), zap.Error(err))
				return nil
			}
			mu.Lock()
			facts = append(facts, f)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return types.Baseline{}, &types.UpstreamFetchError{Source: "competitors", Message: "baseline aborted", Cause: err}
	}
	if len(facts) == 0 {
		return types.Baseline{}, &types.UpstreamFetchError{
			Source:  "competitors",
			Message: fmt.Sprintf("no competitor page for %q could be analyzed", term),
		}
	}

	baseline := Summarize(facts, a.opts.MarkupMajority)
	a.logger.Debug("competitor baseline",
		zap.String("term", term),
		zap.Int("pages", baseline.PagesAnalyzed),
		zap.Int("avg_word_count", baseline.CompetitorAvgWordCount),
		zap.Bool("markup", baseline.CompetitorsUseStructuredMarkup))
	return baseline, nil
}

// Summarize averages word counts and decides whether markup is common among
// the given pages.
func Summarize(facts []*fetch.PageFacts, markupMajority float64) types.Baseline {
	if len(facts) == 0 {
		return types.Baseline{}
	}
	var words, marked int
	for _, f := range facts {
		words += f.WordCount
		if f.HasStructuredMarkup {
			marked++
		}
	}
	n := len(facts)
	return types.Baseline{
		CompetitorAvgWordCount:         int(math.Round(float64(words) / float64(n))),
		CompetitorsUseStructuredMarkup: float64(marked)/float64(n) > markupMajority,
		PagesAnalyzed:                  n,
	}
}

func excludeDomain(urls []string, domain string) []string {
	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		if domain != "" && hostOf(raw) == domain {
			continue
		}
		out = append(out, raw)
	}
	return out
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
