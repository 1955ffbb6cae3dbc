// Package llm wraps the generative model used to draft remediation content.
package llm

import (
	"fmt"
	"time"
)

// Tier selects a model by the size of the job.
type Tier string

const (
	// TierTitle covers one-line rewrites such as page titles.
	TierTitle Tier = "title"
	// TierDraft covers structured markup and multi-paragraph drafts.
	TierDraft Tier = "draft"
)

// Config selects models and generation limits.
type Config struct {
	Models          map[Tier]string
	Temperature     float32
	MaxOutputTokens int32
	// Timeout bounds a single generation call; zero means only the caller's context applies.
	Timeout time.Duration
}

// DefaultConfig returns the Gemini models used in production.
func DefaultConfig() *Config {
	return &Config{
		Models: map[Tier]string{
			TierTitle: "gemini-2.5-flash-lite",
			TierDraft: "gemini-2.5-flash",
		},
		Temperature:     0.3,
		MaxOutputTokens: 2048,
		Timeout:         60 * time.Second,
	}
}

// Model returns the model configured for tier.
func (c *Config) Model(tier Tier) (string, error) {
	if name := c.Models[tier]; name != "" {
		return name, nil
	}
	return "", fmt.Errorf("no model configured for tier %q", tier)
}
