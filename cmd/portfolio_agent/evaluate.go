package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/keyword-portfolio/internal/db"
	"github.com/jonathan/keyword-portfolio/internal/engine"
	"github.com/jonathan/keyword-portfolio/internal/observability"
	"github.com/jonathan/keyword-portfolio/internal/provider"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run one swap cycle",
	Long: `Runs one swap cycle. With --project the cycle runs against the database and the
data provider. Without it the cycle runs in memory: --candidates supplies the scan,
--portfolio the current members, and the resulting decision and portfolio are printed.`,
	RunE: runEvaluate,
}

var (
	evaluateProject    string
	evaluateCandidates string
	evaluatePortfolio  string
	evaluateBudget     int
	evaluateCapacity   int
	evaluateOutput     string
	evaluateVerbose    bool
)

// EvaluateOutput is the JSON written by the evaluate command.
type EvaluateOutput struct {
	Result    *types.SwapResult `json:"result"`
	Portfolio *types.Portfolio  `json:"portfolio,omitempty"`
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateProject, "project", "p", "", "Project ID to evaluate against the database")
	evaluateCmd.Flags().StringVarP(&evaluateCandidates, "candidates", "c", "", "Path to candidates JSON file (offline mode)")
	evaluateCmd.Flags().StringVar(&evaluatePortfolio, "portfolio", "", "Path to JSON array of current portfolio members (offline mode)")
	evaluateCmd.Flags().IntVarP(&evaluateBudget, "budget", "b", 0, "Authority budget 0-100 (offline mode)")
	evaluateCmd.Flags().IntVar(&evaluateCapacity, "capacity", 10, "Portfolio capacity (offline mode)")
	evaluateCmd.Flags().StringVarP(&evaluateOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	evaluateCmd.Flags().BoolVarP(&evaluateVerbose, "verbose", "v", false, "Print the decision to stderr")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	var (
		out EvaluateOutput
		err error
	)
	if evaluateProject != "" {
		out, err = evaluateOnline(cmd.Context(), evaluateProject)
	} else {
		out, err = evaluateOffline(cmd.Context())
	}
	if err != nil {
		return err
	}

	if evaluateVerbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintSwapResult(out.Result)
		printer.PrintPortfolio(out.Portfolio, evaluateCapacity)
	}
	return writeJSON(cmd.OutOrStdout(), evaluateOutput, out)
}

func evaluateOnline(ctx context.Context, rawID string) (EvaluateOutput, error) {
	projectID, err := uuid.Parse(rawID)
	if err != nil {
		return EvaluateOutput{}, fmt.Errorf("invalid project ID %q: %w", rawID, err)
	}
	rt, err := newRuntime(ctx, true)
	if err != nil {
		return EvaluateOutput{}, err
	}
	defer rt.Close()

	result, err := rt.engine.RunSwapCycle(ctx, projectID)
	if err != nil {
		return EvaluateOutput{}, err
	}
	portfolio, err := rt.db.LoadPortfolio(ctx, projectID)
	if err != nil {
		return EvaluateOutput{}, err
	}
	evaluateCapacity = rt.cfg.PortfolioCapacity
	return EvaluateOutput{Result: result, Portfolio: portfolio}, nil
}

func evaluateOffline(ctx context.Context) (EvaluateOutput, error) {
	if evaluateCandidates == "" {
		return EvaluateOutput{}, fmt.Errorf("--candidates is required without --project")
	}
	if err := checkBudget(evaluateBudget); err != nil {
		return EvaluateOutput{}, err
	}
	// Validate up front for a clear error; the engine reads the same file.
	if _, err := loadCandidates(evaluateCandidates); err != nil {
		return EvaluateOutput{}, err
	}
	tuning, err := loadTuning()
	if err != nil {
		return EvaluateOutput{}, err
	}

	store := db.NewMemStore()
	project, err := store.CreateProject(ctx, &types.CreateProjectRequest{
		OwnerRef:        "cli",
		Domain:          "offline.local",
		AuthorityBudget: evaluateBudget,
	})
	if err != nil {
		return EvaluateOutput{}, err
	}
	if evaluatePortfolio != "" {
		var members []types.ActiveKeyword
		if err := readJSONFile(evaluatePortfolio, &members); err != nil {
			return EvaluateOutput{}, err
		}
		for _, m := range members {
			m.ID = uuid.Nil
			if _, err := store.SeedKeyword(project.ID, m); err != nil {
				return EvaluateOutput{}, err
			}
		}
	}

	opts := engine.DefaultOptions()
	opts.Capacity = evaluateCapacity
	opts.FetchAttempts = 1
	opts.Tuning = *tuning
	e, err := engine.New(engine.Deps{
		Store:      store,
		Candidates: &provider.FileSource{CandidatesPath: evaluateCandidates},
		Logger:     logger.Named("engine"),
	}, opts)
	if err != nil {
		return EvaluateOutput{}, err
	}

	result, err := e.RunSwapCycle(ctx, project.ID)
	if err != nil {
		return EvaluateOutput{}, err
	}
	portfolio, err := store.LoadPortfolio(ctx, project.ID)
	if err != nil {
		return EvaluateOutput{}, err
	}
	return EvaluateOutput{Result: result, Portfolio: portfolio}, nil
}
