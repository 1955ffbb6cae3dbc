package ranking

import "github.com/jonathan/keyword-portfolio/internal/types"

// Threshold is the exclusive difficulty ceiling for an authority budget.
func Threshold(authorityBudget int, p Params) float64 {
	return float64(authorityBudget + p.AffordabilityOffset)
}

// Affordable reports whether a single candidate passes the gate. Candidates
// without a difficulty are rejected.
func Affordable(c *types.CandidateOpportunity, authorityBudget int, p Params) bool {
	if c.Difficulty == nil {
		return false
	}
	return *c.Difficulty < Threshold(authorityBudget, p)
}

// Gate returns the candidates whose difficulty is strictly below
// authorityBudget + offset, preserving input order.
func Gate(candidates []types.CandidateOpportunity, authorityBudget int, p Params) []types.CandidateOpportunity {
	eligible := make([]types.CandidateOpportunity, 0, len(candidates))
	for i := range candidates {
		if Affordable(&candidates[i], authorityBudget, p) {
			eligible = append(eligible, candidates[i])
		}
	}
	return eligible
}
