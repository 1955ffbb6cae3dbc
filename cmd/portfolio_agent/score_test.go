package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const candidatesJSON = `{
  "candidates": [
    {"term": "dog food", "volume": 800, "cpc": 1.0, "difficulty": 4},
    {"term": "cat toys", "volume": 400, "cpc": 1.0, "difficulty": 4},
    {"term": "pet insurance", "volume": 9000, "cpc": 12.5, "difficulty": 90},
    {"term": "bird seed", "volume": 300, "cpc": 0.5}
  ]
}`

func TestScoreCommand_FlagsValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Missing --candidates flag",
			args:        []string{"score", "--budget", "20"},
			errorString: "required",
		},
		{
			name:        "Missing --budget flag",
			args:        []string{"score", "--candidates", "/tmp/in.json"},
			errorString: "required",
		},
		{
			name:        "Budget out of range",
			args:        []string{"score", "--candidates", "/tmp/in.json", "--budget", "101"},
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

func TestScoreCommand_Success(t *testing.T) {
	input := writeFile(t, "candidates.json", candidatesJSON)

	stdout, stderr, err := execute(t, "score", "--candidates", input, "--budget", "20", "--verbose")
	require.NoError(t, err)

	var out ScoreOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 20, out.AuthorityBudget)
	assert.InDelta(t, 35.0, out.Threshold, 1e-9)
	require.Len(t, out.Ranked, 2)
	assert.Equal(t, "dog food", out.Ranked[0].Term)
	assert.InDelta(t, 100.0, out.Ranked[0].Score, 1e-9)
	assert.Equal(t, "cat toys", out.Ranked[1].Term)
	assert.Equal(t, 2, out.Rejected)
	assert.Contains(t, stderr, "dog food")
}

func TestScoreCommand_WritesOutputFile(t *testing.T) {
	input := writeFile(t, "candidates.json", candidatesJSON)
	outPath := filepath.Join(t.TempDir(), "nested", "ranked.json")

	stdout, _, err := execute(t, "score", "-c", input, "-b", "20", "-o", outPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"term": "dog food"`)
}

func TestScoreCommand_InvalidInput(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errorString string
	}{
		{
			name:        "Invalid JSON",
			content:     `{ invalid json }`,
			errorString: "invalid candidates file",
		},
		{
			name:        "Missing candidates array",
			content:     `{"terms": []}`,
			errorString: "invalid candidates file",
		},
		{
			name:        "Negative volume",
			content:     `{"candidates": [{"term": "x", "volume": -1, "cpc": 1}]}`,
			errorString: "invalid candidates file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeFile(t, "candidates.json", tt.content)
			_, _, err := execute(t, "score", "-c", input, "-b", "20")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}
