package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/keyword-portfolio/internal/competitors"
	"github.com/jonathan/keyword-portfolio/internal/config"
	"github.com/jonathan/keyword-portfolio/internal/db"
	"github.com/jonathan/keyword-portfolio/internal/engine"
	"github.com/jonathan/keyword-portfolio/internal/fetch"
	"github.com/jonathan/keyword-portfolio/internal/llm"
	"github.com/jonathan/keyword-portfolio/internal/metrics"
	"github.com/jonathan/keyword-portfolio/internal/provider"
	"github.com/jonathan/keyword-portfolio/internal/publish"
	"github.com/jonathan/keyword-portfolio/internal/remediation"
	"github.com/jonathan/keyword-portfolio/internal/strikezone"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// runtime bundles the collaborators shared by the long-running commands.
type runtime struct {
	cfg     *config.Config
	tuning  *config.Tuning
	db      *db.DB
	metrics *metrics.Metrics
	engine  *engine.Engine
	llm     llm.Client
}

func (r *runtime) Close() {
	if r.llm != nil {
		_ = r.llm.Close()
	}
	if r.db != nil {
		r.db.Close()
	}
}

// newRuntime connects to the database and wires the engine to the provider,
// page analysis, Gemini remediation and the redirect publisher.
func newRuntime(ctx context.Context, dryRun bool) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, tuning: tuning, metrics: metrics.New()}
	rt.db, err = db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := rt.metrics.RegisterPortfolio(rt.db, logger.Named("metrics")); err != nil {
		rt.Close()
		return nil, err
	}

	client, err := provider.NewClient(provider.Options{
		BaseURL:           cfg.ProviderBaseURL,
		Login:             cfg.ProviderLogin,
		Password:          cfg.ProviderPassword,
		RequestsPerSecond: cfg.ProviderRPS,
	}, logger.Named("provider"))
	if err != nil {
		rt.Close()
		return nil, err
	}

	pages := fetch.NewPageAnalyzer(fetch.DefaultOptions(), cfg.UseBrowser, logger.Named("fetch"))

	var remediator strikezone.Remediator
	if cfg.GeminiAPIKey != "" {
		rt.llm, err = llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
		if err != nil {
			rt.Close()
			return nil, err
		}
		remediator = remediation.New(rt.llm, logger.Named("remediation"))
	} else {
		logger.Warn("GEMINI_API_KEY not set, remediation content disabled")
	}

	sites := publish.NewHtaccessSites(cfg.RedirectsDir, logger.Named("publish"))
	publishers := func(p *types.Project) (engine.Publisher, error) {
		return sites.For(p.Domain)
	}
	if dryRun {
		publishers = func(*types.Project) (engine.Publisher, error) {
			return publish.LogPublisher{Logger: logger.Named("publish")}, nil
		}
	}

	opts := engine.Options{
		Capacity:      cfg.PortfolioCapacity,
		CycleTimeout:  cfg.CycleTimeout,
		FetchAttempts: cfg.FetchAttempts,
		FetchBackoff:  cfg.FetchBackoff,
		MaxParallel:   cfg.MaxParallelProjects,
		Tuning:        *tuning,
	}
	rt.engine, err = engine.New(engine.Deps{
		Store:      rt.db,
		Candidates: client,
		Rankings:   client,
		Pages:      pages,
		Baselines: func(p *types.Project) strikezone.BaselineSource {
			return competitors.New(client, pages, competitors.Options{
				OwnDomain:      p.Domain,
				MarkupMajority: tuning.MarkupMajority,
			}, logger.Named("competitors"))
		},
		Remediator: remediator,
		Publishers: publishers,
		Metrics:    rt.metrics,
		Logger:     logger.Named("engine"),
	}, opts)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// readJSONFile decodes a JSON file into v.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err := w.Write(data)
		return err
	}

	// Ensure output directory exists
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// loadTuning reads TUNING_FILE (default tuning.yaml) for the offline
// commands, which do not need the rest of the environment.
func loadTuning() (*config.Tuning, error) {
	path := os.Getenv("TUNING_FILE")
	if path == "" {
		path = "tuning.yaml"
	}
	return config.LoadTuning(path)
}
