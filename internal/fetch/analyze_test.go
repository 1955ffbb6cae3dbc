package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAnalyzePage(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		title     string
		words     int
		hasMarkup bool
	}{
		{
			name: "json-ld and title",
			html: `<html><head><title> Root Canal Guide </title>
				<script type="application/ld+json">{"@type":"FAQPage"}</script></head>
				<body><nav>Home About</nav><main><p>one two three four</p></main></body></html>`,
			title:     "Root Canal Guide",
			words:     4,
			hasMarkup: true,
		},
		{
			name:      "microdata",
			html:      `<html><body><div itemscope itemtype="https://schema.org/Article"><p>alpha beta</p></div></body></html>`,
			words:     2,
			hasMarkup: true,
		},
		{
			name:  "empty json-ld does not count",
			html:  `<html><head><script type="application/ld+json">  </script></head><body><h1>Dental   Implants</h1></body></html>`,
			title: "Dental Implants",
			words: 2,
		},
		{
			name:  "h1 fallback",
			html:  "<html><body><article><h1>Crown\nCost</h1><p>a b c</p></article></body></html>",
			title: "Crown Cost",
			words: 5,
		},
		{
			name:  "adjacent blocks are separate words",
			html:  `<html><body><main><ul><li>one</li><li>two</li></ul><p>three</p></main><footer>legal text</footer></body></html>`,
			words: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts, err := AnalyzePage(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.title, facts.Title)
			assert.Equal(t, tt.words, facts.WordCount)
			assert.Equal(t, tt.hasMarkup, facts.HasStructuredMarkup)
		})
	}
}

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPageAnalyzer_Analyze(t *testing.T) {
	server := servePage(t, `<html><head><title>Page</title></head><body><main>few words</main></body></html>`)

	a := NewPageAnalyzer(nil, false, nil)
	facts, err := a.Analyze(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, facts.URL)
	assert.Equal(t, "Page", facts.Title)
	assert.Equal(t, 2, facts.WordCount)
}

func TestPageAnalyzer_BrowserFallback(t *testing.T) {
	server := servePage(t, `<html><body><div id="root"></div></body></html>`)

	a := NewPageAnalyzer(nil, true, zap.NewNop())
	a.render = func(_ context.Context, _ string, timeout time.Duration, _ *zap.Logger) (string, error) {
		assert.Equal(t, DefaultTimeout, timeout)
		return `<html><head><title>Rendered</title></head><body><main>now with content</main></body></html>`, nil
	}
	facts, err := a.Analyze(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Rendered", facts.Title)
	assert.Equal(t, 3, facts.WordCount)

	a.render = func(context.Context, string, time.Duration, *zap.Logger) (string, error) {
		return "", errors.New("no chrome")
	}
	facts, err = a.Analyze(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 0, facts.WordCount)
}

func TestPageAnalyzer_SkipsBrowserForFullPages(t *testing.T) {
	body := strings.Repeat("word ", MinServedWords)
	server := servePage(t, "<html><body><main>"+body+"</main></body></html>")

	a := NewPageAnalyzer(nil, true, nil)
	a.render = func(context.Context, string, time.Duration, *zap.Logger) (string, error) {
		t.Fatal("render must not be called")
		return "", nil
	}
	facts, err := a.Analyze(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, MinServedWords, facts.WordCount)
}

func TestPageAnalyzer_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewPageAnalyzer(nil, false, nil).Analyze(context.Background(), server.URL)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusBadGateway, fetchErr.Status)
}
