package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/keyword-portfolio/internal/config"
	"github.com/jonathan/keyword-portfolio/internal/server"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token",
	Long:  "Signs an HS256 token with JWT_SECRET for calling the mutating API endpoints.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jwtConfig, err := config.NewJWTConfig()
		if err != nil {
			return err
		}
		token, err := server.NewJWTService(jwtConfig).GenerateToken(tokenSubject)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Token subject, e.g. an operator name (required)")
	if err := tokenCmd.MarkFlagRequired("subject"); err != nil {
		panic(fmt.Sprintf("failed to mark subject flag as required: %v", err))
	}
	rootCmd.AddCommand(tokenCmd)
}
