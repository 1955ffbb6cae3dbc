package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageFacts are the on-page signals compared against competitors.
type PageFacts struct {
	URL                 string `json:"url"`
	Title               string `json:"title"`
	WordCount           int    `json:"word_count"`
	HasStructuredMarkup bool   `json:"has_structured_markup"`
}

// boilerplate is removed before counting words.
const boilerplate = "nav, header, footer, aside, script, style, noscript, form, iframe, " +
	".sidebar, .cookie-banner, .ad, .ads, .advertisement, .popup"

// contentRoots are tried in order; the first match is the article body.
var contentRoots = []string{
	"main",
	"article",
	"[role=main]",
	"#content",
	".content",
	".post-content",
	".entry-content",
}

// AnalyzePage extracts title, main-content word count and structured markup
// presence from raw HTML. The title falls back to the first h1.
func AnalyzePage(html string) (*PageFacts, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	facts := &PageFacts{
		Title:               squash(doc.Find("head title").First().Text()),
		HasStructuredMarkup: hasStructuredMarkup(doc),
	}
	if facts.Title == "" {
		facts.Title = squash(doc.Find("h1").First().Text())
	}
	// Markup detection runs first; stripping boilerplate removes script tags.
	facts.WordCount = countWords(doc)
	return facts, nil
}

func countWords(doc *goquery.Document) int {
	doc.Find(boilerplate).Remove()
	root := doc.Find("body")
	for _, sel := range contentRoots {
		if s := doc.Find(sel); s.Length() > 0 {
			root = s.First()
			break
		}
	}
	// Block elements are joined without whitespace by Text; add it back.
	root.Find("p, li, h1, h2, h3, h4, h5, h6, td, th, div, br").AfterHtml(" ")
	return len(strings.Fields(root.Text()))
}

// hasStructuredMarkup reports JSON-LD blocks or schema.org microdata.
func hasStructuredMarkup(doc *goquery.Document) bool {
	found := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = strings.TrimSpace(s.Text()) != ""
		return !found
	})
	return found || doc.Find("[itemscope][itemtype]").Length() > 0
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
