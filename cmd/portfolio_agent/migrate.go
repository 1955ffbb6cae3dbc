package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/keyword-portfolio/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Applies the embedded schema migrations to DATABASE_URL. Already-applied migrations are skipped.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required")
		}
		if err := db.RunMigrations(databaseURL); err != nil {
			return err
		}
		logger.Info("migrations applied")
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "✅ Migrations applied")
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
