//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/google/uuid"

// Portfolio is a consistent snapshot of a project's keyword set. Version is
// the optimistic-concurrency token that CommitSwap compares against.
type Portfolio struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Version   int64           `json:"version"`
	Members   []ActiveKeyword `json:"members"`
}

// Active returns the active members in snapshot order.
func (p *Portfolio) Active() []ActiveKeyword {
	active := make([]ActiveKeyword, 0, len(p.Members))
	for _, m := range p.Members {
		if m.IsActive() {
			active = append(active, m)
		}
	}
	return active
}

// Find returns the member with the given term regardless of status, or nil.
func (p *Portfolio) Find(term string) *ActiveKeyword {
	for i := range p.Members {
		if p.Members[i].Term == term {
			return &p.Members[i]
		}
	}
	return nil
}

// AdmitSpec describes the keyword a swap brings into the active set.
type AdmitSpec struct {
	Term      string  `json:"term"`
	Score     float64 `json:"score"`
	TargetURL string  `json:"target_url,omitempty"`
	// ReactivateID is set when a paused row for Term already exists.
	ReactivateID *uuid.UUID `json:"reactivate_id,omitempty"`
}

// SwapPlan is the full set of writes for one portfolio transition. It is
// applied all-or-nothing by the store.
type SwapPlan struct {
	// PauseID is the member to evict; uuid.Nil when the portfolio has room.
	PauseID  uuid.UUID `json:"pause_id"`
	Admit    AdmitSpec `json:"admit"`
	Capacity int       `json:"capacity"`
}

// SwapOutcome names what Evaluate decided.
type SwapOutcome string

const (
	// OutcomeSwapped means the weakest member was paused and the best candidate admitted.
	OutcomeSwapped SwapOutcome = "swapped"
	// OutcomeAdmitted means the portfolio had room and the best candidate was added.
	OutcomeAdmitted SwapOutcome = "admitted"
	// OutcomeNoSwap means the best candidate did not beat the weakest member.
	OutcomeNoSwap SwapOutcome = "no_swap"
	// OutcomeAlreadyActive means the best candidate is already in the active set.
	OutcomeAlreadyActive SwapOutcome = "already_active"
	// OutcomeNoCandidates means there was nothing to evaluate.
	OutcomeNoCandidates SwapOutcome = "no_candidates"
)

// SwapResult records the decision of one Evaluate call.
type SwapResult struct {
	ProjectID uuid.UUID             `json:"project_id"`
	Outcome   SwapOutcome           `json:"outcome"`
	Best      *CandidateOpportunity `json:"best,omitempty"`
	Weakest   *ActiveKeyword        `json:"weakest,omitempty"`
	Version   int64                 `json:"version"`
}

// Changed reports whether the portfolio was mutated.
func (r *SwapResult) Changed() bool {
	return r.Outcome == OutcomeSwapped || r.Outcome == OutcomeAdmitted
}
