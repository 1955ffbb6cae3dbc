package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/jonathan/keyword-portfolio/internal/observability"
	"github.com/jonathan/keyword-portfolio/internal/ranking"
	"github.com/jonathan/keyword-portfolio/internal/schemas"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Gate and rank candidate keywords for an authority budget",
	Long:  "Applies the affordability gate to a candidates JSON file and ranks the survivors by Yield-Efficiency score, highest first.",
	RunE:  runScore,
}

var (
	scoreCandidates string
	scoreBudget     int
	scoreOutput     string
	scoreVerbose    bool
)

// ScoreOutput is the JSON written by the score command.
type ScoreOutput struct {
	AuthorityBudget int                          `json:"authority_budget"`
	Threshold       float64                      `json:"threshold"`
	Ranked          []types.CandidateOpportunity `json:"ranked"`
	Rejected        int                          `json:"rejected"`
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreCandidates, "candidates", "c", "", "Path to input candidates JSON file (required)")
	scoreCmd.Flags().IntVarP(&scoreBudget, "budget", "b", -1, "Project authority budget 0-100 (required)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print a summary table to stderr")

	if err := scoreCmd.MarkFlagRequired("candidates"); err != nil {
		panic(fmt.Sprintf("failed to mark candidates flag as required: %v", err))
	}
	if err := scoreCmd.MarkFlagRequired("budget"); err != nil {
		panic(fmt.Sprintf("failed to mark budget flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func loadCandidates(path string) ([]types.CandidateOpportunity, error) {
	if err := schemas.ValidateFile(schemas.Candidates, path); err != nil {
		return nil, fmt.Errorf("invalid candidates file: %w", err)
	}
	var doc types.Candidates
	if err := readJSONFile(path, &doc); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&doc); err != nil {
		return nil, fmt.Errorf("invalid candidates file: %w", err)
	}
	return doc.Candidates, nil
}

func checkBudget(budget int) error {
	if budget < 0 || budget > 100 {
		return fmt.Errorf("--budget must be between 0 and 100, got %d", budget)
	}
	return nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	if err := checkBudget(scoreBudget); err != nil {
		return err
	}
	candidates, err := loadCandidates(scoreCandidates)
	if err != nil {
		return err
	}
	tuning, err := loadTuning()
	if err != nil {
		return err
	}

	ranked := ranking.GateAndRank(candidates, scoreBudget, tuning.Scoring)
	out := ScoreOutput{
		AuthorityBudget: scoreBudget,
		Threshold:       ranking.Threshold(scoreBudget, tuning.Scoring),
		Ranked:          ranked,
		Rejected:        len(candidates) - len(ranked),
	}
	if scoreVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintRankedCandidates(out.Ranked, out.Threshold, out.Rejected)
	}
	return writeJSON(cmd.OutOrStdout(), scoreOutput, out)
}
