//nolint:revive // types is a standard Go package name pattern
package types

// GapType classifies why a near-miss page is not on the front page.
type GapType string

const (
	// GapMissingStructuredMarkup means competitors carry structured markup and the page does not.
	GapMissingStructuredMarkup GapType = "MissingStructuredMarkup"
	// GapContentThin means the page is much shorter than competitor pages.
	GapContentThin GapType = "ContentThin"
	// GapTitleMismatch means the page title does not contain every term token.
	GapTitleMismatch GapType = "TitleMismatch"
	// GapContentStale means a page that used to rank well has slipped and
	// needs a freshness update.
	GapContentStale GapType = "ContentStale"
	// GapNone means no actionable gap was found.
	GapNone GapType = "NoGapFound"
)

// PageSnapshot is an active keyword joined with its ranking and on-page facts.
type PageSnapshot struct {
	Term                string  `json:"term" validate:"required"`
	URL                 string  `json:"url"`
	Rank                int     `json:"rank" validate:"gte=0"`
	Volume              int     `json:"volume" validate:"gte=0"`
	CPC                 float64 `json:"cpc" validate:"gte=0"`
	WordCount           int     `json:"word_count" validate:"gte=0"`
	HasStructuredMarkup bool    `json:"has_structured_markup"`
	Title               string  `json:"title"`
}

// Impact is the value-at-stake ordering used to pick one target per cycle.
func (s *PageSnapshot) Impact() float64 {
	return float64(s.Volume) * s.CPC
}

// Baseline summarises the competing pages for a term.
type Baseline struct {
	CompetitorAvgWordCount         int  `json:"competitor_avg_word_count" validate:"gte=0"`
	CompetitorsUseStructuredMarkup bool `json:"competitors_use_structured_markup"`
	PagesAnalyzed                  int  `json:"pages_analyzed,omitempty"`
}

// RemediationContext is handed to the content-generation collaborator.
type RemediationContext struct {
	Term         string `json:"term"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	WordCount    int    `json:"word_count"`
	WordDeficit  int    `json:"word_deficit"`
	CompetitorWC int    `json:"competitor_word_count"`
	PreviousRank int    `json:"previous_rank,omitempty"`
	CurrentRank  int    `json:"current_rank,omitempty"`
}

// Diagnosis is the output of one strike zone diagnostic.
type Diagnosis struct {
	Term        string  `json:"term"`
	URL         string  `json:"url"`
	Rank        int     `json:"rank"`
	Impact      float64 `json:"impact"`
	Gap         GapType `json:"gap"`
	Remediation string  `json:"remediation,omitempty"`
	// RemediationError is set when the collaborator failed; the cycle still completes.
	RemediationError string `json:"remediation_error,omitempty"`
}

// StrikeZoneInput bundles a file-driven diagnostic run.
type StrikeZoneInput struct {
	Pages     []PageSnapshot      `json:"pages" validate:"dive"`
	Baselines map[string]Baseline `json:"baselines"`
}
