package ranking

import (
	"sort"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// RankCandidates scores every candidate and returns a new slice sorted by
// score, highest first. Equal scores keep their input order.
func RankCandidates(candidates []types.CandidateOpportunity, p Params) []types.CandidateOpportunity {
	ranked := make([]types.CandidateOpportunity, len(candidates))
	copy(ranked, candidates)

	for i := range ranked {
		difficulty := minDifficulty
		if ranked[i].Difficulty != nil {
			difficulty = *ranked[i].Difficulty
		}
		ranked[i].Score = YieldEfficiency(ranked[i].Volume, ranked[i].CPC, difficulty, p)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// GateAndRank applies the affordability gate and then ranks the survivors.
func GateAndRank(candidates []types.CandidateOpportunity, authorityBudget int, p Params) []types.CandidateOpportunity {
	return RankCandidates(Gate(candidates, authorityBudget, p), p)
}
