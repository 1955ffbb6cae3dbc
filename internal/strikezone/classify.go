// Package strikezone diagnoses near-miss keywords: pages ranking just off
// the first results page.
package strikezone

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// Params bound the strike zone and the thin-content threshold.
type Params struct {
	MinRank           int `yaml:"min_rank" json:"min_rank" validate:"gte=1"`
	MaxRank           int `yaml:"max_rank" json:"max_rank" validate:"gtefield=MinRank"`
	ThinContentMargin int `yaml:"thin_content_margin" json:"thin_content_margin" validate:"gte=0"`
}

// DefaultParams returns ranks 11 to 20 and a 500 word margin.
func DefaultParams() Params {
	return Params{MinRank: 11, MaxRank: 20, ThinContentMargin: 500}
}

// InZone reports whether rank falls inside the strike zone, bounds included.
func InZone(rank int, p Params) bool {
	return rank >= p.MinRank && rank <= p.MaxRank
}

// SelectTarget returns the highest-impact in-zone page, or nil. Equal impact
// goes to the better rank, then the smaller term.
func SelectTarget(pages []types.PageSnapshot, p Params) *types.PageSnapshot {
	var zone []types.PageSnapshot
	for _, page := range pages {
		if InZone(page.Rank, p) {
			zone = append(zone, page)
		}
	}
	if len(zone) == 0 {
		return nil
	}
	sort.SliceStable(zone, func(i, j int) bool {
		if zone[i].Impact() != zone[j].Impact() {
			return zone[i].Impact() > zone[j].Impact()
		}
		if zone[i].Rank != zone[j].Rank {
			return zone[i].Rank < zone[j].Rank
		}
		return zone[i].Term < zone[j].Term
	})
	target := zone[0]
	return &target
}

// Classify returns the first matching gap in strict priority order: missing
// structured markup, thin content, title mismatch.
func Classify(page types.PageSnapshot, baseline types.Baseline, p Params) types.GapType {
	if baseline.CompetitorsUseStructuredMarkup && !page.HasStructuredMarkup {
		return types.GapMissingStructuredMarkup
	}
	if page.WordCount < baseline.CompetitorAvgWordCount-p.ThinContentMargin {
		return types.GapContentThin
	}
	if !TitleCoversTerm(page.Title, page.Term) {
		return types.GapTitleMismatch
	}
	return types.GapNone
}

// wordEdge matches the start or end of the text or any character that is not
// a Unicode letter, digit or underscore. regexp's \b only knows ASCII.
const wordEdge = `[^\p{L}\p{N}_]`

// TitleCoversTerm reports whether every whitespace-delimited token of term
// appears in title as a whole word, ignoring case. Word edges are Unicode
// aware, so "café" is found in "Best Café in Paris".
func TitleCoversTerm(title, term string) bool {
	for _, token := range strings.Fields(term) {
		re := regexp.MustCompile(`(?i)(?:^|` + wordEdge + `)` + regexp.QuoteMeta(token) + `(?:$|` + wordEdge + `)`)
		if !re.MatchString(title) {
			return false
		}
	}
	return true
}
