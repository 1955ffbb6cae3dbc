// Package main provides the entry point for the keyword portfolio engine.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/logging"
)

var (
	logLevel string
	logDev   bool
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "portfolio_agent",
	Short: "Keyword Portfolio Decision Engine",
	Long: "Keeps a fixed-size portfolio of target keywords per project: admits affordable, high-yield terms, " +
		"diagnoses near-miss pages and resolves cannibalization between a site's own pages.",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level := logLevel
		if level == "" {
			level = os.Getenv("LOG_LEVEL")
		}
		l, err := logging.New(level, logDev || os.Getenv("LOG_DEV") == "true")
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL or info)")
	rootCmd.PersistentFlags().BoolVar(&logDev, "log-dev", false, "Human-readable development logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
