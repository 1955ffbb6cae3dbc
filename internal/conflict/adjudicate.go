// Package conflict resolves keyword cannibalization: several URLs of one site
// competing for the same term.
package conflict

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// strengthEpsilon absorbs float noise when comparing strength scores.
const strengthEpsilon = 1e-9

// Weights are the Strength Score coefficients.
type Weights struct {
	Rank      float64 `yaml:"rank" json:"rank"`
	Backlinks float64 `yaml:"backlinks" json:"backlinks"`
	Traffic   float64 `yaml:"traffic" json:"traffic"`
}

// DefaultWeights returns the production coefficients: rank -1, backlinks 0.5,
// traffic 0.2.
func DefaultWeights() Weights {
	return Weights{Rank: -1, Backlinks: 0.5, Traffic: 0.2}
}

// Strength computes the Strength Score of one competing URL.
func Strength(e types.ConflictEntry, w Weights) float64 {
	return w.Rank*float64(e.Rank) + w.Backlinks*float64(e.Backlinks) + w.Traffic*float64(e.Traffic)
}

// Adjudicate partitions the group into one Winner and its Losers and emits
// one redirect directive per Loser. It is pure: the same group always yields
// the same verdict.
func Adjudicate(group types.ConflictGroup, w Weights) (*types.Verdict, error) {
	if err := validator.New().Struct(group); err != nil {
		return nil, fmt.Errorf("invalid conflict group: %w", err)
	}
	seen := make(map[string]bool, len(group.Entries))
	for _, e := range group.Entries {
		if seen[e.URL] {
			return nil, fmt.Errorf("invalid conflict group: duplicate url %q", e.URL)
		}
		seen[e.URL] = true
	}

	scored := make([]types.ScoredEntry, len(group.Entries))
	for i, e := range group.Entries {
		scored[i] = types.ScoredEntry{ConflictEntry: e, Strength: Strength(e, w)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return stronger(scored[i], scored[j])
	})

	verdict := &types.Verdict{
		Term:       group.Term,
		Winner:     scored[0],
		Losers:     scored[1:],
		Directives: make([]types.RedirectDirective, 0, len(scored)-1),
	}
	for _, loser := range verdict.Losers {
		verdict.Directives = append(verdict.Directives, types.RedirectDirective{
			Term:      group.Term,
			LoserURL:  loser.URL,
			WinnerURL: verdict.Winner.URL,
		})
	}
	return verdict, nil
}

// stronger orders by strength, then lower rank, then smallest URL.
func stronger(a, b types.ScoredEntry) bool {
	if math.Abs(a.Strength-b.Strength) > strengthEpsilon {
		return a.Strength > b.Strength
	}
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.URL < b.URL
}
