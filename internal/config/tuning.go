package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/keyword-portfolio/internal/conflict"
	"github.com/jonathan/keyword-portfolio/internal/freshness"
	"github.com/jonathan/keyword-portfolio/internal/ranking"
	"github.com/jonathan/keyword-portfolio/internal/strikezone"
)

// Tuning holds the product-tuned constants of the decision engine. Every
// field has a default, so the file only needs the values being changed.
type Tuning struct {
	Scoring         ranking.Params    `yaml:"scoring"`
	StrikeZone      strikezone.Params `yaml:"strike_zone"`
	ConflictWeights conflict.Weights  `yaml:"conflict_weights"`
	// ConflictMaxRank bounds the ranking window scanned for cannibalization.
	ConflictMaxRank int `yaml:"conflict_max_rank" validate:"gte=1"`
	// MarkupMajority is the share of analyzed competitor pages that must carry
	// structured markup before it counts as a competitor norm.
	MarkupMajority float64          `yaml:"markup_majority" validate:"gt=0,lte=1"`
	Freshness      freshness.Params `yaml:"freshness"`
}

// DefaultTuning returns the production constants.
func DefaultTuning() Tuning {
	return Tuning{
		Scoring:         ranking.DefaultParams(),
		StrikeZone:      strikezone.DefaultParams(),
		ConflictWeights: conflict.DefaultWeights(),
		ConflictMaxRank: conflict.DefaultMaxRank,
		MarkupMajority:  0.5,
		Freshness:       freshness.DefaultParams(),
	}
}

// LoadTuning reads the YAML tuning file over the defaults. A missing file
// yields the defaults without error.
func LoadTuning(path string) (*Tuning, error) {
	tuning := DefaultTuning()
	if path == "" {
		return &tuning, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Tuning file is optional
			return &tuning, nil
		}
		return nil, fmt.Errorf("failed to read tuning file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return nil, fmt.Errorf("failed to parse tuning YAML: %w", err)
	}
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	return &tuning, nil
}

// Validate checks ranges on every tuning value.
func (t *Tuning) Validate() error {
	if err := validator.New().Struct(t); err != nil {
		return fmt.Errorf("invalid tuning: %w", err)
	}
	return nil
}
