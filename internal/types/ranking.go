//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// RankedPage is one row of ranking data for a project's own site: a URL and
// the position it holds for a term.
type RankedPage struct {
	Term      string  `json:"term"`
	URL       string  `json:"url"`
	Rank      int     `json:"rank"`
	Volume    int     `json:"volume"`
	CPC       float64 `json:"cpc"`
	Backlinks int     `json:"backlinks"`
	Traffic   int     `json:"traffic"`
}

// UnrankedPosition stands in for a keyword that has dropped out of the
// tracked ranking window.
const UnrankedPosition = 101

// RankSnapshot is the position an active keyword held at one point in time.
// Rank is 0 when none of the project's pages ranked for the term.
type RankSnapshot struct {
	ProjectID  uuid.UUID `json:"project_id"`
	Term       string    `json:"term"`
	URL        string    `json:"url,omitempty"`
	Rank       int       `json:"rank"`
	Volume     int       `json:"volume"`
	CPC        float64   `json:"cpc"`
	CapturedAt time.Time `json:"captured_at"`
}

// Position returns Rank, mapping unranked to UnrankedPosition.
func (s RankSnapshot) Position() int {
	if s.Rank <= 0 {
		return UnrankedPosition
	}
	return s.Rank
}

// Decay is an active keyword whose ranking slipped between two snapshots.
type Decay struct {
	Term         string  `json:"term"`
	URL          string  `json:"url"`
	PreviousRank int     `json:"previous_rank"`
	CurrentRank  int     `json:"current_rank"`
	Drop         int     `json:"drop"`
	Impact       float64 `json:"impact"`
}

// FreshnessReport is the output of one freshness cycle.
type FreshnessReport struct {
	Captured int     `json:"captured"`
	Decayed  []Decay `json:"decayed,omitempty"`
	// Target is the decayed keyword a freshness update was requested for.
	Target           *Decay `json:"target,omitempty"`
	Remediation      string `json:"remediation,omitempty"`
	RemediationError string `json:"remediation_error,omitempty"`
}
