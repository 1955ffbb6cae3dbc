// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRankedCandidates outputs the gated, scored candidates best first.
func (p *Printer) PrintRankedCandidates(ranked []types.CandidateOpportunity, threshold float64, rejected int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Difficulty must be below %.0f\n", threshold))
	sb.WriteString(fmt.Sprintf("Affordable: %d   Rejected: %d\n\n", len(ranked), rejected))

	count := min(len(ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := ranked[i]
		sb.WriteString(fmt.Sprintf("%2d. %-32s %10.2f\n", i+1, c.Term, c.Score))
	}
	if len(ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("    ... and %d more\n", len(ranked)-maxItemsToShow))
	}

	p.printBox("RANKED CANDIDATES", sb.String())
}

// PrintSwapResult outputs the decision of one swap evaluation.
func (p *Printer) PrintSwapResult(result *types.SwapResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Outcome:  %s\n", result.Outcome))
	if result.Best != nil {
		sb.WriteString(fmt.Sprintf("Best:     %s (%.2f)\n", result.Best.Term, result.Best.Score))
	}
	if result.Weakest != nil {
		label := "Weakest:"
		if result.Outcome == types.OutcomeSwapped {
			label = "Paused: "
		}
		sb.WriteString(fmt.Sprintf("%s  %s (%.2f)\n", label, result.Weakest.Term, result.Weakest.Score))
	}
	sb.WriteString(fmt.Sprintf("Version:  %d\n", result.Version))

	p.printBox("SWAP DECISION", sb.String())
}

// PrintPortfolio outputs the active and paused members of a portfolio.
func (p *Printer) PrintPortfolio(portfolio *types.Portfolio, capacity int) {
	if portfolio == nil {
		return
	}

	active := portfolio.Active()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Active: %d/%d   Version: %d\n\n", len(active), capacity, portfolio.Version))
	for _, k := range active {
		sb.WriteString(fmt.Sprintf("  ● %-36s %10.2f\n", k.Term, k.Score))
	}
	for _, k := range portfolio.Members {
		if !k.IsActive() {
			sb.WriteString(fmt.Sprintf("  ○ %-36s %10.2f\n", k.Term, k.Score))
		}
	}

	p.printBox("PORTFOLIO", sb.String())
}

// PrintDiagnosis outputs a strike zone diagnosis and any remediation.
func (p *Printer) PrintDiagnosis(d *types.Diagnosis) {
	if d == nil {
		p.printBox("STRIKE ZONE", "No active keyword ranks in the strike zone.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Term:     %s\n", d.Term))
	sb.WriteString(fmt.Sprintf("URL:      %s\n", d.URL))
	sb.WriteString(fmt.Sprintf("Rank:     %d\n", d.Rank))
	sb.WriteString(fmt.Sprintf("Impact:   %.2f\n", d.Impact))
	sb.WriteString(fmt.Sprintf("Gap:      %s\n", d.Gap))
	if d.RemediationError != "" {
		sb.WriteString(fmt.Sprintf("\n⚠ Remediation failed: %s\n", d.RemediationError))
	}
	if d.Remediation != "" {
		sb.WriteString("\nRemediation:\n")
		lines := strings.Split(d.Remediation, "\n")
		count := min(len(lines), maxItemsToShow)
		for _, line := range lines[:count] {
			sb.WriteString("  " + line + "\n")
		}
		if len(lines) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more lines\n", len(lines)-maxItemsToShow))
		}
	}

	p.printBox("STRIKE ZONE DIAGNOSIS", sb.String())
}

// PrintVerdict outputs a conflict verdict and the redirect rules for it.
func (p *Printer) PrintVerdict(v *types.Verdict, rules []string) {
	if v == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Term:    %s\n", v.Term))
	sb.WriteString(fmt.Sprintf("Winner:  %s (%.2f)\n", v.Winner.URL, v.Winner.Strength))
	if len(v.Losers) > 0 {
		sb.WriteString("Losers:\n")
		for _, l := range v.Losers {
			sb.WriteString(fmt.Sprintf("  • %s (%.2f)\n", l.URL, l.Strength))
		}
	}
	if len(rules) > 0 {
		sb.WriteString("\n")
		for _, r := range rules {
			sb.WriteString(r + "\n")
		}
	}

	p.printBox("CANNIBALIZATION VERDICT", sb.String())
}
