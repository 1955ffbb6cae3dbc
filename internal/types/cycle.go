//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// CycleKind names one of the engine's decision cycles.
type CycleKind string

const (
	// CycleSwap is the fetch, gate, score and swap cycle.
	CycleSwap CycleKind = "swap"
	// CycleStrikeZone is the near-miss diagnostic cycle.
	CycleStrikeZone CycleKind = "strike_zone"
	// CycleConflict is the cannibalization adjudication cycle.
	CycleConflict CycleKind = "conflict"
	// CycleFreshness is the rank decay and freshness update cycle.
	CycleFreshness CycleKind = "freshness"
)

// ParseCycleKind maps an API path segment to a CycleKind.
func ParseCycleKind(s string) (CycleKind, bool) {
	switch s {
	case "swap":
		return CycleSwap, true
	case "strike-zone", "strike_zone":
		return CycleStrikeZone, true
	case "conflict", "cannibalization":
		return CycleConflict, true
	case "freshness":
		return CycleFreshness, true
	default:
		return "", false
	}
}

// CycleStatus is the final state of a cycle run.
type CycleStatus string

const (
	// CycleSucceeded means the cycle ran and acted.
	CycleSucceeded CycleStatus = "succeeded"
	// CycleNoAction means the cycle ran and had nothing to do.
	CycleNoAction CycleStatus = "no_action"
	// CycleFailed means the cycle aborted without changing the portfolio.
	CycleFailed CycleStatus = "failed"
)

// CycleRun is the persisted record of one cycle execution.
type CycleRun struct {
	ID         uuid.UUID   `json:"id"`
	ProjectID  uuid.UUID   `json:"project_id"`
	Kind       CycleKind   `json:"kind"`
	Status     CycleStatus `json:"status"`
	Summary    string      `json:"summary"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}
