package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/jonathan/keyword-portfolio/internal/llm"
	"github.com/jonathan/keyword-portfolio/internal/observability"
	"github.com/jonathan/keyword-portfolio/internal/remediation"
	"github.com/jonathan/keyword-portfolio/internal/schemas"
	"github.com/jonathan/keyword-portfolio/internal/strikezone"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnose the highest-impact page in the strike zone",
	Long:  "Reads page snapshots and competitor baselines, picks the highest-impact page ranking 11-20 and classifies why it misses the front page. With --remediate, Gemini drafts the fix.",
	RunE:  runDiagnose,
}

var (
	diagnoseInput     string
	diagnoseRemediate bool
	diagnoseOutput    string
	diagnoseVerbose   bool
)

func init() {
	diagnoseCmd.Flags().StringVarP(&diagnoseInput, "input", "i", "", "Path to strike zone input JSON file (required)")
	diagnoseCmd.Flags().BoolVar(&diagnoseRemediate, "remediate", false, "Generate remediation content with Gemini (needs GEMINI_API_KEY)")
	diagnoseCmd.Flags().StringVarP(&diagnoseOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	diagnoseCmd.Flags().BoolVarP(&diagnoseVerbose, "verbose", "v", false, "Print the diagnosis to stderr")

	if err := diagnoseCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	if err := schemas.ValidateFile(schemas.StrikeZoneInput, diagnoseInput); err != nil {
		return fmt.Errorf("invalid strike zone input: %w", err)
	}
	var input types.StrikeZoneInput
	if err := readJSONFile(diagnoseInput, &input); err != nil {
		return err
	}
	if err := validator.New().Struct(&input); err != nil {
		return fmt.Errorf("invalid strike zone input: %w", err)
	}
	tuning, err := loadTuning()
	if err != nil {
		return err
	}

	var remediator strikezone.Remediator
	if diagnoseRemediate {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is required with --remediate")
		}
		client, err := llm.NewGeminiClient(cmd.Context(), llm.DefaultConfig(), apiKey)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		remediator = remediation.New(client, logger.Named("remediation"))
	}

	diagnostic := strikezone.NewDiagnostic(tuning.StrikeZone, remediator, logger.Named("strikezone"))
	diagnosis, err := diagnostic.Diagnose(cmd.Context(), input.Pages, strikezone.StaticBaselines(input.Baselines))
	if err != nil {
		return err
	}

	if diagnoseVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintDiagnosis(diagnosis)
	}
	return writeJSON(cmd.OutOrStdout(), diagnoseOutput, diagnosis)
}
