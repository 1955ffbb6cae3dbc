//nolint:revive // types is a standard Go package name pattern
package types

// ConflictEntry is one URL competing for the group's term.
type ConflictEntry struct {
	URL       string `json:"url" validate:"required,url"`
	Rank      int    `json:"rank" validate:"gte=1"`
	Backlinks int    `json:"backlinks" validate:"gte=0"`
	Traffic   int    `json:"traffic" validate:"gte=0"`
}

// ConflictGroup is a cannibalization case inside one project. It is never
// persisted; it is resolved immediately into a Verdict.
type ConflictGroup struct {
	Term    string          `json:"term" validate:"required"`
	Entries []ConflictEntry `json:"entries" validate:"min=2,dive"`
}

// ScoredEntry is a conflict entry with its Strength Score.
type ScoredEntry struct {
	ConflictEntry
	Strength float64 `json:"strength"`
}

// RedirectDirective asks the publishing collaborator to send Loser traffic to Winner.
type RedirectDirective struct {
	Term      string `json:"term,omitempty"`
	LoserURL  string `json:"loser_url"`
	WinnerURL string `json:"winner_url"`
}

// Verdict is the Winner/Loser partition of a ConflictGroup.
type Verdict struct {
	Term       string              `json:"term"`
	Winner     ScoredEntry         `json:"winner"`
	Losers     []ScoredEntry       `json:"losers"`
	Directives []RedirectDirective `json:"directives"`
}
