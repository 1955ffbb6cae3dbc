package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const conflictJSON = `{
  "term": "dog food",
  "entries": [
    {"url": "https://example.com/blog/dog-food", "rank": 8, "backlinks": 2, "traffic": 10},
    {"url": "https://example.com/dog-food", "rank": 3, "backlinks": 40, "traffic": 100}
  ]
}`

func TestAdjudicateCommand_Success(t *testing.T) {
	input := writeFile(t, "group.json", conflictJSON)

	stdout, _, err := execute(t, "adjudicate", "--input", input)
	require.NoError(t, err)

	var out AdjudicateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.NotNil(t, out.Verdict)
	assert.Equal(t, "https://example.com/dog-food", out.Verdict.Winner.URL)
	assert.InDelta(t, 37.0, out.Verdict.Winner.Strength, 1e-9)
	require.Len(t, out.Verdict.Losers, 1)
	assert.Equal(t, []string{"Redirect 301 /blog/dog-food https://example.com/dog-food"}, out.Rules)
}

func TestAdjudicateCommand_AppliesHtaccess(t *testing.T) {
	input := writeFile(t, "group.json", conflictJSON)
	htaccess := filepath.Join(t.TempDir(), ".htaccess")

	_, _, err := execute(t, "adjudicate", "-i", input, "--htaccess", htaccess)
	require.NoError(t, err)
	// Applying the same verdict twice must not duplicate the rule.
	_, _, err = execute(t, "adjudicate", "-i", input, "--htaccess", htaccess)
	require.NoError(t, err)

	data, err := os.ReadFile(htaccess)
	require.NoError(t, err)
	assert.Equal(t, "Redirect 301 /blog/dog-food https://example.com/dog-food\n", string(data))
}

func TestAdjudicateCommand_Validation(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errorString string
	}{
		{
			name:        "Single entry",
			content:     `{"term": "dog food", "entries": [{"url": "https://example.com/a", "rank": 1}]}`,
			errorString: "invalid conflict group",
		},
		{
			name:        "Rank below one",
			content:     `{"term": "x", "entries": [{"url": "https://example.com/a", "rank": 0}, {"url": "https://example.com/b", "rank": 2}]}`,
			errorString: "invalid conflict group",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeFile(t, "group.json", tt.content)
			_, _, err := execute(t, "adjudicate", "-i", input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}
