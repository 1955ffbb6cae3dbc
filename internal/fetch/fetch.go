// Package fetch retrieves web pages and extracts the on-page facts the
// strike zone diagnostic compares: text length, structured markup and title.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout bounds one page request.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the analyzer to the sites it reads.
	DefaultUserAgent = "Mozilla/5.0 (compatible; KeywordPortfolio/1.0)"
	// DefaultMaxBytes caps how much of a page body is read.
	DefaultMaxBytes = 10 << 20
)

// Response is a fetched HTML document.
type Response struct {
	URL      string
	FinalURL string
	Status   int
	HTML     string
}

// Error is a page that could not be fetched. Status is zero when no HTTP
// response was received.
type Error struct {
	URL     string
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures page requests. A nil *Options means DefaultOptions.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// DefaultOptions returns the options used by the engine.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

func (o *Options) httpClient() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: o.Timeout}
}

func (o *Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Get downloads an HTML page. Non-200 responses and non-HTML content types
// are errors.
func Get(ctx context.Context, rawURL string, opts *Options) (*Response, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := opts.httpClient().Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: rawURL, Status: resp.StatusCode, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil && mt != "text/html" && mt != "application/xhtml+xml" {
			return nil, &Error{URL: rawURL, Status: resp.StatusCode, Message: "not an HTML page: " + mt}
		}
	}

	limit := opts.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, &Error{URL: rawURL, Status: resp.StatusCode, Message: "failed to read body", Cause: err}
	}
	return &Response{
		URL:      rawURL,
		FinalURL: resp.Request.URL.String(),
		Status:   resp.StatusCode,
		HTML:     string(body),
	}, nil
}
