package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

func TestEvaluateCommand_OfflineSwap(t *testing.T) {
	candidates := writeFile(t, "candidates.json", candidatesJSON)
	portfolio := writeFile(t, "portfolio.json", `[{"term": "old term", "score": 5, "status": "active"}]`)

	stdout, _, err := execute(t, "evaluate",
		"--candidates", candidates,
		"--portfolio", portfolio,
		"--budget", "20",
		"--capacity", "1",
	)
	require.NoError(t, err)

	var out EvaluateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.NotNil(t, out.Result)
	assert.Equal(t, types.OutcomeSwapped, out.Result.Outcome)
	require.NotNil(t, out.Result.Best)
	assert.Equal(t, "dog food", out.Result.Best.Term)
	require.NotNil(t, out.Result.Weakest)
	assert.Equal(t, "old term", out.Result.Weakest.Term)

	require.NotNil(t, out.Portfolio)
	active := out.Portfolio.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "dog food", active[0].Term)
	assert.NotNil(t, out.Portfolio.Find("old term"))
}

func TestEvaluateCommand_OfflineNoSwap(t *testing.T) {
	candidates := writeFile(t, "candidates.json", candidatesJSON)
	portfolio := writeFile(t, "portfolio.json", `[{"term": "strong term", "score": 500, "status": "active"}]`)

	stdout, _, err := execute(t, "evaluate", "-c", candidates, "--portfolio", portfolio, "-b", "20", "--capacity", "1")
	require.NoError(t, err)

	var out EvaluateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, types.OutcomeNoSwap, out.Result.Outcome)
	active := out.Portfolio.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "strong term", active[0].Term)
}

func TestEvaluateCommand_OfflineAdmitsIntoEmptyPortfolio(t *testing.T) {
	candidates := writeFile(t, "candidates.json", candidatesJSON)

	stdout, stderr, err := execute(t, "evaluate", "-c", candidates, "-b", "20", "--verbose")
	require.NoError(t, err)

	var out EvaluateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, types.OutcomeAdmitted, out.Result.Outcome)
	assert.Len(t, out.Portfolio.Active(), 1)
	assert.Contains(t, stderr, "dog food")
}

func TestEvaluateCommand_Validation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Neither project nor candidates",
			args:        []string{"evaluate"},
			errorString: "--candidates is required",
		},
		{
			name:        "Malformed project ID",
			args:        []string{"evaluate", "--project", "not-a-uuid"},
			errorString: "invalid project ID",
		},
		{
			name:        "Budget out of range",
			args:        []string{"evaluate", "-c", "/tmp/in.json", "-b", "-5"},
			errorString: "between 0 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}
