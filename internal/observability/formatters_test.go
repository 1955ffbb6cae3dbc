package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

func TestPrintRankedCandidates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ranked := []types.CandidateOpportunity{
		{Term: "dog food", Score: 265.62},
		{Term: "cat toys", Score: 12},
	}
	p.PrintRankedCandidates(ranked, 45, 3)
	output := buf.String()

	assert.Contains(t, output, "RANKED CANDIDATES")
	assert.Contains(t, output, "below 45")
	assert.Contains(t, output, "Rejected: 3")
	assert.Contains(t, output, "dog food")
	assert.Contains(t, output, "265.62")
	assert.Less(t, strings.Index(output, "dog food"), strings.Index(output, "cat toys"))
}

func TestPrintRankedCandidates_Truncates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ranked := make([]types.CandidateOpportunity, maxItemsToShow+3)
	for i := range ranked {
		ranked[i] = types.CandidateOpportunity{Term: "term", Score: 1}
	}
	p.PrintRankedCandidates(ranked, 15, 0)

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintSwapResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSwapResult(&types.SwapResult{
		Outcome: types.OutcomeSwapped,
		Best:    &types.CandidateOpportunity{Term: "dog food", Score: 90},
		Weakest: &types.ActiveKeyword{Term: "old term", Score: 10},
		Version: 7,
	})
	output := buf.String()

	assert.Contains(t, output, "SWAP DECISION")
	assert.Contains(t, output, "swapped")
	assert.Contains(t, output, "Paused:   old term (10.00)")
	assert.Contains(t, output, "Version:  7")
}

func TestPrintSwapResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSwapResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintPortfolio(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPortfolio(&types.Portfolio{
		Version: 3,
		Members: []types.ActiveKeyword{
			{Term: "alpha", Score: 5, Status: types.StatusActive},
			{Term: "beta", Score: 1, Status: types.StatusPaused},
		},
	}, 10)
	output := buf.String()

	assert.Contains(t, output, "Active: 1/10")
	assert.Contains(t, output, "● alpha")
	assert.Contains(t, output, "○ beta")
}

func TestPrintDiagnosis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDiagnosis(&types.Diagnosis{
		Term:             "dog food",
		URL:              "https://example.com/food",
		Rank:             12,
		Gap:              types.GapMissingStructuredMarkup,
		RemediationError: "model unavailable",
	})
	output := buf.String()

	assert.Contains(t, output, "STRIKE ZONE DIAGNOSIS")
	assert.Contains(t, output, "MissingStructuredMarkup")
	assert.Contains(t, output, "Remediation failed")

	buf.Reset()
	p.PrintDiagnosis(nil)
	assert.Contains(t, buf.String(), "No active keyword")
}

func TestPrintVerdict(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVerdict(&types.Verdict{
		Term:   "dog food",
		Winner: types.ScoredEntry{ConflictEntry: types.ConflictEntry{URL: "https://a.example/"}, Strength: 98},
		Losers: []types.ScoredEntry{{ConflictEntry: types.ConflictEntry{URL: "https://b.example/"}, Strength: 7}},
	}, []string{"Redirect 301 / https://a.example/"})
	output := buf.String()

	assert.Contains(t, output, "CANNIBALIZATION VERDICT")
	assert.Contains(t, output, "https://a.example/ (98.00)")
	assert.Contains(t, output, "• https://b.example/ (7.00)")
	assert.Contains(t, output, "Redirect 301")
}
