package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jonathan/keyword-portfolio/internal/conflict"
	"github.com/jonathan/keyword-portfolio/internal/observability"
	"github.com/jonathan/keyword-portfolio/internal/publish"
	"github.com/jonathan/keyword-portfolio/internal/schemas"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

var adjudicateCmd = &cobra.Command{
	Use:   "adjudicate",
	Short: "Resolve a keyword cannibalization group",
	Long:  "Scores every URL competing for one term, picks the winner and emits a 301 redirect for each loser. With --htaccess the rules are written to that file.",
	RunE:  runAdjudicate,
}

var (
	adjudicateInput    string
	adjudicateHtaccess string
	adjudicateOutput   string
	adjudicateVerbose  bool
)

// AdjudicateOutput is the JSON written by the adjudicate command.
type AdjudicateOutput struct {
	Verdict *types.Verdict `json:"verdict"`
	Rules   []string       `json:"htaccess_rules"`
}

func init() {
	adjudicateCmd.Flags().StringVarP(&adjudicateInput, "input", "i", "", "Path to conflict group JSON file (required)")
	adjudicateCmd.Flags().StringVar(&adjudicateHtaccess, "htaccess", "", "Apply the redirects to this .htaccess file")
	adjudicateCmd.Flags().StringVarP(&adjudicateOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	adjudicateCmd.Flags().BoolVarP(&adjudicateVerbose, "verbose", "v", false, "Print the verdict to stderr")

	if err := adjudicateCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(adjudicateCmd)
}

func runAdjudicate(cmd *cobra.Command, _ []string) error {
	if err := schemas.ValidateFile(schemas.ConflictGroup, adjudicateInput); err != nil {
		return fmt.Errorf("invalid conflict group: %w", err)
	}
	var group types.ConflictGroup
	if err := readJSONFile(adjudicateInput, &group); err != nil {
		return err
	}
	tuning, err := loadTuning()
	if err != nil {
		return err
	}

	verdict, err := conflict.Adjudicate(group, tuning.ConflictWeights)
	if err != nil {
		return err
	}
	rules := make([]string, 0, len(verdict.Directives))
	for _, d := range verdict.Directives {
		rule, err := conflict.HtaccessRule(d)
		if err != nil {
			return err
		}
		rules = append(rules, rule)
	}

	if adjudicateHtaccess != "" {
		publisher := publish.NewHtaccessPublisher(adjudicateHtaccess, siteOf(verdict.Winner.URL), logger.Named("publish"))
		for _, d := range verdict.Directives {
			if err := publisher.ApplyRedirect(cmd.Context(), d); err != nil {
				return err
			}
		}
	}

	if adjudicateVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintVerdict(verdict, rules)
	}
	return writeJSON(cmd.OutOrStdout(), adjudicateOutput, AdjudicateOutput{Verdict: verdict, Rules: rules})
}

// siteOf returns the host of rawURL, or "" when it has none.
func siteOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
