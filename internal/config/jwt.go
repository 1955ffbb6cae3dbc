package config

import (
	"fmt"
	"os"
	"time"
)

const minSecretLen = 16

// JWTConfig signs and checks the bearer tokens that guard the mutating API.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// NewJWTConfig reads JWT_SECRET (required, at least 16 bytes), JWT_ISSUER
// (default keyword-portfolio) and JWT_TTL (default 24h).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLen)
	}
	ttl, err := getEnvDuration("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	if ttl < time.Minute {
		return nil, fmt.Errorf("JWT_TTL must be at least 1m, got %s", ttl)
	}
	return &JWTConfig{
		Secret: secret,
		Issuer: getEnv("JWT_ISSUER", "keyword-portfolio"),
		TTL:    ttl,
	}, nil
}
