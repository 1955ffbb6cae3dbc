// Package provider fetches keyword, ranking and SERP data from a
// DataForSEO-compatible API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// DefaultBaseURL is the public DataForSEO API root.
const DefaultBaseURL = "https://api.dataforseo.com"

const (
	pathKeywordsForSite = "/v3/dataforseo_labs/google/keywords_for_site/live"
	pathRankedKeywords  = "/v3/dataforseo_labs/google/ranked_keywords/live"
	pathOrganicSERP     = "/v3/serp/google/organic/live/regular"
)

// Options configures the client.
type Options struct {
	BaseURL      string
	Login        string
	Password     string
	LocationCode int
	LanguageCode string
	Limit        int
	Timeout      time.Duration
	HTTPClient   *http.Client
	// RequestsPerSecond throttles outgoing calls. Zero means unlimited.
	RequestsPerSecond float64
}

// Client talks to the data provider over HTTPS with basic auth.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a provider client.
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if opts.Login == "" || opts.Password == "" {
		return nil, fmt.Errorf("provider login and password are required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.LocationCode == 0 {
		opts.LocationCode = 2840
	}
	if opts.LanguageCode == "" {
		opts.LanguageCode = "en"
	}
	if opts.Limit <= 0 {
		opts.Limit = 1000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Client{opts: opts, http: httpClient, limiter: limiter, logger: logger}, nil
}

type taskRequest struct {
	Target       string `json:"target,omitempty"`
	Keyword      string `json:"keyword,omitempty"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code"`
	Limit        int    `json:"limit,omitempty"`
	Depth        int    `json:"depth,omitempty"`
}

type envelope struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int               `json:"status_code"`
		StatusMessage string            `json:"status_message"`
		Result        []json.RawMessage `json:"result"`
	} `json:"tasks"`
}

type keywordInfo struct {
	SearchVolume *int     `json:"search_volume"`
	CPC          *float64 `json:"cpc"`
}

type keywordProperties struct {
	KeywordDifficulty *float64 `json:"keyword_difficulty"`
}

type keywordData struct {
	Keyword           string            `json:"keyword"`
	KeywordInfo       keywordInfo       `json:"keyword_info"`
	KeywordProperties keywordProperties `json:"keyword_properties"`
}

// post sends one task and returns the first result object, or nil when the
// provider answered successfully with no data.
func (c *Client) post(ctx context.Context, source, path string, task taskRequest) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &types.UpstreamFetchError{Source: source, Message: "rate limiter wait aborted", Cause: err}
	}
	body, err := json.Marshal([]taskRequest{task})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &types.UpstreamFetchError{Source: source, Message: "failed to create request", Cause: err}
	}
	req.SetBasicAuth(c.opts.Login, c.opts.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &types.UpstreamFetchError{Source: source, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.UpstreamFetchError{Source: source, Message: "failed to read response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &types.UpstreamFetchError{Source: source, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &types.UpstreamFetchError{Source: source, Message: "malformed response", Cause: err}
	}
	if env.StatusCode >= 40000 {
		return nil, &types.UpstreamFetchError{Source: source, Message: env.StatusMessage}
	}
	if len(env.Tasks) == 0 {
		return nil, nil
	}
	t := env.Tasks[0]
	if t.StatusCode >= 40000 {
		return nil, &types.UpstreamFetchError{Source: source, Message: t.StatusMessage}
	}
	if len(t.Result) == 0 || string(t.Result[0]) == "null" {
		c.logger.Debug("provider returned no result", zap.String("source", source))
		return nil, nil
	}
	return t.Result[0], nil
}

// FetchCandidates returns keyword opportunities relevant to the project's
// domain. An empty answer is not an error.
func (c *Client) FetchCandidates(ctx context.Context, project *types.Project) ([]types.CandidateOpportunity, error) {
	raw, err := c.post(ctx, "candidates", pathKeywordsForSite, taskRequest{
		Target:       project.Domain,
		LocationCode: c.opts.LocationCode,
		LanguageCode: c.opts.LanguageCode,
		Limit:        c.opts.Limit,
	})
	if err != nil || raw == nil {
		return nil, err
	}

	var result struct {
		Items []keywordData `json:"items"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &types.UpstreamFetchError{Source: "candidates", Message: "malformed result", Cause: err}
	}

	candidates := make([]types.CandidateOpportunity, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Keyword == "" {
			continue
		}
		candidates = append(candidates, types.CandidateOpportunity{
			Term:       item.Keyword,
			Volume:     derefInt(item.KeywordInfo.SearchVolume),
			CPC:        derefFloat(item.KeywordInfo.CPC),
			Difficulty: item.KeywordProperties.KeywordDifficulty,
			Source:     "dataforseo",
		})
	}
	return candidates, nil
}

// FetchRankings returns the positions the project's domain holds.
func (c *Client) FetchRankings(ctx context.Context, project *types.Project) ([]types.RankedPage, error) {
	raw, err := c.post(ctx, "rankings", pathRankedKeywords, taskRequest{
		Target:       project.Domain,
		LocationCode: c.opts.LocationCode,
		LanguageCode: c.opts.LanguageCode,
		Limit:        c.opts.Limit,
	})
	if err != nil || raw == nil {
		return nil, err
	}

	var result struct {
		Items []struct {
			KeywordData       keywordData `json:"keyword_data"`
			RankedSERPElement struct {
				SERPItem struct {
					RankGroup     int     `json:"rank_group"`
					URL           string  `json:"url"`
					ETV           float64 `json:"etv"`
					BacklinksInfo *struct {
						Backlinks int `json:"backlinks"`
					} `json:"backlinks_info"`
				} `json:"serp_item"`
			} `json:"ranked_serp_element"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &types.UpstreamFetchError{Source: "rankings", Message: "malformed result", Cause: err}
	}

	pages := make([]types.RankedPage, 0, len(result.Items))
	for _, item := range result.Items {
		serp := item.RankedSERPElement.SERPItem
		if item.KeywordData.Keyword == "" || serp.RankGroup < 1 {
			continue
		}
		page := types.RankedPage{
			Term:    item.KeywordData.Keyword,
			URL:     serp.URL,
			Rank:    serp.RankGroup,
			Volume:  derefInt(item.KeywordData.KeywordInfo.SearchVolume),
			CPC:     derefFloat(item.KeywordData.KeywordInfo.CPC),
			Traffic: int(math.Round(serp.ETV)),
		}
		if serp.BacklinksInfo != nil {
			page.Backlinks = serp.BacklinksInfo.Backlinks
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// TopResults returns up to n organic result URLs for term, best first.
func (c *Client) TopResults(ctx context.Context, term string, n int) ([]string, error) {
	if n <= 0 {
		n = 10
	}
	raw, err := c.post(ctx, "serp", pathOrganicSERP, taskRequest{
		Keyword:      term,
		LocationCode: c.opts.LocationCode,
		LanguageCode: c.opts.LanguageCode,
		Depth:        n,
	})
	if err != nil || raw == nil {
		return nil, err
	}

	var result struct {
		Items []struct {
			Type      string `json:"type"`
			RankGroup int    `json:"rank_group"`
			URL       string `json:"url"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &types.UpstreamFetchError{Source: "serp", Message: "malformed result", Cause: err}
	}

	urls := make([]string, 0, n)
	for _, item := range result.Items {
		if item.Type != "organic" || item.URL == "" {
			continue
		}
		urls = append(urls, item.URL)
		if len(urls) == n {
			break
		}
	}
	return urls, nil
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
