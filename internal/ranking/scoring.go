// Package ranking scores keyword opportunities and filters them by affordability.
package ranking

import "math"

// Default tuning for the Yield-Efficiency score and the affordability gate.
// These are product decisions, so they are overridable through Params.
const (
	DefaultDifficultyExponent  = 1.5
	DefaultAffordabilityOffset = 15
)

// minDifficulty keeps the denominator away from zero and negative bases.
const minDifficulty = 1.0

// Params holds the tunable constants of the scoring and gating steps.
type Params struct {
	DifficultyExponent  float64 `yaml:"difficulty_exponent" json:"difficulty_exponent" validate:"gt=0"`
	AffordabilityOffset int     `yaml:"affordability_offset" json:"affordability_offset" validate:"gte=0"`
}

// DefaultParams returns the production tuning.
func DefaultParams() Params {
	return Params{
		DifficultyExponent:  DefaultDifficultyExponent,
		AffordabilityOffset: DefaultAffordabilityOffset,
	}
}

// YieldEfficiency computes (volume * cpc) / difficulty^exponent rounded to
// two decimals. Difficulty below 1 is treated as 1. Negative volume or cpc
// count as zero, so the score is never negative.
func YieldEfficiency(volume int, cpc, difficulty float64, p Params) float64 {
	if volume <= 0 || cpc <= 0 {
		return 0
	}
	if difficulty < minDifficulty || math.IsNaN(difficulty) {
		difficulty = minDifficulty
	}
	exponent := p.DifficultyExponent
	if exponent <= 0 {
		exponent = DefaultDifficultyExponent
	}

	raw := (float64(volume) * cpc) / math.Pow(difficulty, exponent)
	return round2(raw)
}

// Score computes the Yield-Efficiency score with the default tuning.
func Score(volume int, cpc, difficulty float64) float64 {
	return YieldEfficiency(volume, cpc, difficulty, DefaultParams())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
