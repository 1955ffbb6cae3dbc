package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// FileSource serves candidates and rankings from local JSON files. It stands
// in for the API in offline runs and tests.
type FileSource struct {
	CandidatesPath string
	RankingsPath   string
}

// FetchCandidates reads a {"candidates": [...]} document.
func (f *FileSource) FetchCandidates(_ context.Context, _ *types.Project) ([]types.CandidateOpportunity, error) {
	if f.CandidatesPath == "" {
		return nil, nil
	}
	var doc types.Candidates
	if err := readJSON(f.CandidatesPath, &doc); err != nil {
		return nil, &types.UpstreamFetchError{Source: "candidates", Message: "failed to read file", Cause: err}
	}
	return doc.Candidates, nil
}

// FetchRankings reads a JSON array of ranked pages.
func (f *FileSource) FetchRankings(_ context.Context, _ *types.Project) ([]types.RankedPage, error) {
	if f.RankingsPath == "" {
		return nil, nil
	}
	var pages []types.RankedPage
	if err := readJSON(f.RankingsPath, &pages); err != nil {
		return nil, &types.UpstreamFetchError{Source: "rankings", Message: "failed to read file", Cause: err}
	}
	return pages, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
