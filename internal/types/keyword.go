//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// KeywordStatus is the lifecycle state of a portfolio member.
type KeywordStatus string

const (
	// StatusActive marks a keyword currently tracked and worked on.
	StatusActive KeywordStatus = "active"
	// StatusPaused marks a keyword evicted by a swap. It can be reactivated later.
	StatusPaused KeywordStatus = "paused"
)

// CandidateOpportunity is a keyword proposed by a scan. It lives for one cycle
// unless a swap promotes it into the portfolio.
type CandidateOpportunity struct {
	Term   string  `json:"term" validate:"required"`
	Volume int     `json:"volume" validate:"gte=0"`
	CPC    float64 `json:"cpc" validate:"gte=0"`
	// Difficulty is nil when the upstream source did not report it; the
	// affordability gate rejects such candidates.
	Difficulty *float64 `json:"difficulty,omitempty" validate:"omitempty,gte=0,lte=100"`
	Source     string   `json:"source,omitempty"`
	TargetURL  string   `json:"target_url,omitempty"`
	// Score is the Yield-Efficiency score, filled in by the scoring step.
	Score float64 `json:"score"`
}

// Candidates is a collection of candidate opportunities, used for file I/O.
type Candidates struct {
	Candidates []CandidateOpportunity `json:"candidates" validate:"dive"`
}

// ActiveKeyword is a portfolio member. At most one active row exists per
// (project, term) and at most Capacity active rows exist per project.
type ActiveKeyword struct {
	ID        uuid.UUID     `json:"id"`
	ProjectID uuid.UUID     `json:"project_id"`
	Term      string        `json:"term"`
	Score     float64       `json:"score"`
	Status    KeywordStatus `json:"status"`
	TargetURL string        `json:"target_url,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsActive reports whether the keyword is currently active.
func (k *ActiveKeyword) IsActive() bool {
	return k.Status == StatusActive
}
