package strikezone

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

type fakeRemediator struct {
	calls []types.GapType
	last  types.RemediationContext
	text  string
	err   error
}

func (f *fakeRemediator) RequestRemediation(_ context.Context, gap types.GapType, rc types.RemediationContext) (string, error) {
	f.calls = append(f.calls, gap)
	f.last = rc
	return f.text, f.err
}

func TestDiagnose_MissingMarkup(t *testing.T) {
	rem := &fakeRemediator{text: `{"@type":"FAQPage"}`}
	d := NewDiagnostic(DefaultParams(), rem, nil)

	pages := []types.PageSnapshot{
		{Term: "dental implants", URL: "https://example.com/implants", Rank: 12, Volume: 1000, CPC: 5, WordCount: 50},
	}
	baselines := StaticBaselines{
		"dental implants": {CompetitorAvgWordCount: 1500, CompetitorsUseStructuredMarkup: true},
	}

	diagnosis, err := d.Diagnose(context.Background(), pages, baselines)
	require.NoError(t, err)
	require.NotNil(t, diagnosis)
	assert.Equal(t, types.GapMissingStructuredMarkup, diagnosis.Gap)
	assert.Equal(t, 5000.0, diagnosis.Impact)
	assert.Equal(t, `{"@type":"FAQPage"}`, diagnosis.Remediation)
	assert.Empty(t, diagnosis.RemediationError)
	assert.Equal(t, []types.GapType{types.GapMissingStructuredMarkup}, rem.calls)
	assert.Equal(t, 1450, rem.last.WordDeficit)
}

func TestDiagnose_OnlyOneTargetPerRun(t *testing.T) {
	rem := &fakeRemediator{text: "ok"}
	d := NewDiagnostic(DefaultParams(), rem, nil)

	pages := []types.PageSnapshot{
		{Term: "small", Rank: 11, Volume: 10, CPC: 1, Title: "x"},
		{Term: "big", Rank: 18, Volume: 1000, CPC: 3, Title: "x"},
	}
	baselines := StaticBaselines{"big": {}}

	diagnosis, err := d.Diagnose(context.Background(), pages, baselines)
	require.NoError(t, err)
	assert.Equal(t, "big", diagnosis.Term)
	assert.Equal(t, types.GapTitleMismatch, diagnosis.Gap)
	assert.Len(t, rem.calls, 1)
}

func TestDiagnose_NoGapSkipsRemediation(t *testing.T) {
	rem := &fakeRemediator{text: "unused"}
	d := NewDiagnostic(DefaultParams(), rem, nil)

	pages := []types.PageSnapshot{{Term: "crm", Rank: 13, WordCount: 2000, Title: "Best CRM"}}
	diagnosis, err := d.Diagnose(context.Background(), pages, StaticBaselines{"crm": {CompetitorAvgWordCount: 1000}})
	require.NoError(t, err)
	assert.Equal(t, types.GapNone, diagnosis.Gap)
	assert.Empty(t, rem.calls)
	assert.Empty(t, diagnosis.Remediation)
}

func TestDiagnose_RemediationFailureDegrades(t *testing.T) {
	rem := &fakeRemediator{err: errors.New("quota exceeded")}
	d := NewDiagnostic(DefaultParams(), rem, nil)

	pages := []types.PageSnapshot{{Term: "crm", Rank: 13, WordCount: 100}}
	diagnosis, err := d.Diagnose(context.Background(), pages, StaticBaselines{"crm": {CompetitorAvgWordCount: 1000}})
	require.NoError(t, err)
	assert.Equal(t, types.GapContentThin, diagnosis.Gap)
	assert.Empty(t, diagnosis.Remediation)
	assert.Contains(t, diagnosis.RemediationError, "quota exceeded")
}

func TestDiagnose_NothingInZone(t *testing.T) {
	d := NewDiagnostic(DefaultParams(), nil, nil)
	diagnosis, err := d.Diagnose(context.Background(), []types.PageSnapshot{{Term: "a", Rank: 2}}, StaticBaselines{})
	require.NoError(t, err)
	assert.Nil(t, diagnosis)
}

func TestDiagnose_MissingBaseline(t *testing.T) {
	d := NewDiagnostic(DefaultParams(), nil, nil)
	_, err := d.Diagnose(context.Background(), []types.PageSnapshot{{Term: "a", Rank: 12}}, StaticBaselines{})
	var upstream *types.UpstreamFetchError
	require.ErrorAs(t, err, &upstream)
	assert.True(t, types.IsRetryable(err))
}
