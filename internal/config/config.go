// Package config loads runtime configuration from the environment and the
// optional YAML tuning file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Database
	DatabaseURL string

	// Server
	ServerPort int

	// Collaborators
	GeminiAPIKey     string
	ProviderBaseURL  string
	ProviderLogin    string
	ProviderPassword string
	// ProviderRPS caps provider API calls per second; zero is unlimited.
	ProviderRPS float64
	UseBrowser  bool
	// RedirectsDir holds one <domain>/.htaccess file per project site.
	RedirectsDir string

	// Engine
	CycleInterval       time.Duration
	CycleTimeout        time.Duration
	PortfolioCapacity   int
	MaxParallelProjects int
	FetchAttempts       int
	FetchBackoff        time.Duration

	// Logging
	LogLevel string
	LogDev   bool

	// TuningFile points at the YAML file with scoring constants.
	TuningFile string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		ProviderBaseURL:  getEnv("PROVIDER_BASE_URL", ""),
		ProviderLogin:    getEnv("PROVIDER_LOGIN", ""),
		ProviderPassword: getEnv("PROVIDER_PASSWORD", ""),
		RedirectsDir:     getEnv("REDIRECTS_DIR", "redirects"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		TuningFile:       getEnv("TUNING_FILE", "tuning.yaml"),
	}

	var err error
	if cfg.ServerPort, err = getEnvInt("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.PortfolioCapacity, err = getEnvInt("PORTFOLIO_CAPACITY", 10); err != nil {
		return nil, err
	}
	if cfg.MaxParallelProjects, err = getEnvInt("MAX_PARALLEL_PROJECTS", 4); err != nil {
		return nil, err
	}
	if cfg.FetchAttempts, err = getEnvInt("FETCH_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.CycleInterval, err = getEnvDuration("CYCLE_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CycleTimeout, err = getEnvDuration("CYCLE_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.FetchBackoff, err = getEnvDuration("FETCH_BACKOFF", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProviderRPS, err = getEnvFloat("PROVIDER_RPS", 2); err != nil {
		return nil, err
	}
	if cfg.UseBrowser, err = getEnvBool("USE_BROWSER", false); err != nil {
		return nil, err
	}
	if cfg.LogDev, err = getEnvBool("LOG_DEV", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values. Required
// collaborator settings are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("config error: SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.PortfolioCapacity < 1 {
		return fmt.Errorf("config error: PORTFOLIO_CAPACITY must be at least 1, got %d", c.PortfolioCapacity)
	}
	if c.MaxParallelProjects < 1 {
		return fmt.Errorf("config error: MAX_PARALLEL_PROJECTS must be at least 1, got %d", c.MaxParallelProjects)
	}
	if c.FetchAttempts < 1 {
		return fmt.Errorf("config error: FETCH_ATTEMPTS must be at least 1, got %d", c.FetchAttempts)
	}
	if c.CycleInterval <= 0 {
		return fmt.Errorf("config error: CYCLE_INTERVAL must be positive")
	}
	if c.CycleTimeout <= 0 {
		return fmt.Errorf("config error: CYCLE_TIMEOUT must be positive")
	}
	if c.ProviderRPS < 0 {
		return fmt.Errorf("config error: PROVIDER_RPS must not be negative")
	}
	if c.FetchBackoff < 0 {
		return fmt.Errorf("config error: FETCH_BACKOFF must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %v", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return f, nil
}
