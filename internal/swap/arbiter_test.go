package swap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/keyword-portfolio/internal/db"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

func setup(t *testing.T, capacity int, seed ...types.ActiveKeyword) (*Arbiter, *db.MemStore, uuid.UUID) {
	t.Helper()
	store := db.NewMemStore()
	p, err := store.CreateProject(context.Background(), &types.CreateProjectRequest{
		OwnerRef: "owner", Domain: "example.com", AuthorityBudget: 20,
	})
	require.NoError(t, err)
	for _, k := range seed {
		_, err := store.SeedKeyword(p.ID, k)
		require.NoError(t, err)
	}
	a, err := NewArbiter(store, capacity, nil)
	require.NoError(t, err)
	return a, store, p.ID
}

func activeTerms(t *testing.T, store *db.MemStore, projectID uuid.UUID) []string {
	t.Helper()
	active, err := store.ListKeywords(context.Background(), projectID, types.StatusActive)
	require.NoError(t, err)
	terms := make([]string, 0, len(active))
	for _, k := range active {
		terms = append(terms, k.Term)
	}
	return terms
}

func TestNewArbiter_Validation(t *testing.T) {
	_, err := NewArbiter(nil, 1, nil)
	assert.Error(t, err)

	_, err = NewArbiter(db.NewMemStore(), 0, nil)
	assert.Error(t, err)
}

func TestEvaluate_NoSwapWhenWeakestIsStronger(t *testing.T) {
	a, store, projectID := setup(t, 2,
		types.ActiveKeyword{Term: "alpha", Score: 10},
		types.ActiveKeyword{Term: "beta", Score: 12},
	)

	result, err := a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{
		{Term: "gamma", Score: 8},
	})
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeNoSwap, result.Outcome)
	require.NotNil(t, result.Weakest)
	assert.Equal(t, "alpha", result.Weakest.Term)
	assert.False(t, result.Changed())
	assert.ElementsMatch(t, []string{"alpha", "beta"}, activeTerms(t, store, projectID))
}

func TestEvaluate_EqualScoreDoesNotSwap(t *testing.T) {
	a, _, projectID := setup(t, 1, types.ActiveKeyword{Term: "alpha", Score: 10})

	result, err := a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{
		{Term: "gamma", Score: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeNoSwap, result.Outcome)
}

func TestEvaluate_SwapsWeakest(t *testing.T) {
	a, store, projectID := setup(t, 2,
		types.ActiveKeyword{Term: "alpha", Score: 10},
		types.ActiveKeyword{Term: "beta", Score: 12},
	)

	result, err := a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{
		{Term: "gamma", Score: 55.9},
		{Term: "delta", Score: 11},
	})
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeSwapped, result.Outcome)
	assert.Equal(t, "gamma", result.Best.Term)
	assert.Equal(t, "alpha", result.Weakest.Term)
	assert.Equal(t, int64(3), result.Version)
	assert.ElementsMatch(t, []string{"beta", "gamma"}, activeTerms(t, store, projectID))

	paused, err := store.ListKeywords(context.Background(), projectID, types.StatusPaused)
	require.NoError(t, err)
	require.Len(t, paused, 1)
	assert.Equal(t, "alpha", paused[0].Term)
}

func TestEvaluate_AdmitsWhenRoom(t *testing.T) {
	a, store, projectID := setup(t, 3, types.ActiveKeyword{Term: "alpha", Score: 10})

	result, err := a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{
		{Term: "gamma", Score: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeAdmitted, result.Outcome)
	assert.Nil(t, result.Weakest)
	assert.ElementsMatch(t, []string{"alpha", "gamma"}, activeTerms(t, store, projectID))
}

func TestEvaluate_Idempotent(t *testing.T) {
	a, store, projectID := setup(t, 2,
		types.ActiveKeyword{Term: "alpha", Score: 10},
		types.ActiveKeyword{Term: "beta", Score: 12},
	)
	candidates := []types.CandidateOpportunity{{Term: "gamma", Score: 55.9}}
	ctx := context.Background()

	first, err := a.Evaluate(ctx, projectID, candidates)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeSwapped, first.Outcome)
	after := activeTerms(t, store, projectID)

	second, err := a.Evaluate(ctx, projectID, candidates)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeAlreadyActive, second.Outcome)
	assert.False(t, second.Changed())
	assert.Equal(t, first.Version, second.Version)
	assert.ElementsMatch(t, after, activeTerms(t, store, projectID))
}

func TestEvaluate_NeverExceedsCapacity(t *testing.T) {
	a, store, projectID := setup(t, 3)
	ctx := context.Background()

	for i, term := range []string{"a", "b", "c", "d", "e", "f"} {
		_, err := a.Evaluate(ctx, projectID, []types.CandidateOpportunity{
			{Term: term, Score: float64(i + 1)},
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(activeTerms(t, store, projectID)), 3)
	}
	assert.ElementsMatch(t, []string{"d", "e", "f"}, activeTerms(t, store, projectID))
}

func TestEvaluate_ReactivatesPausedKeyword(t *testing.T) {
	a, store, projectID := setup(t, 1,
		types.ActiveKeyword{Term: "alpha", Score: 5},
		types.ActiveKeyword{Term: "gamma", Score: 2, Status: types.StatusPaused, TargetURL: "https://example.com/gamma"},
	)

	result, err := a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{
		{Term: "gamma", Score: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeSwapped, result.Outcome)

	active, err := store.ListKeywords(context.Background(), projectID, types.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "gamma", active[0].Term)
	assert.Equal(t, 20.0, active[0].Score)
	assert.Equal(t, "https://example.com/gamma", active[0].TargetURL)

	all, err := store.ListKeywords(context.Background(), projectID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2, "reactivation must not create a duplicate row")
}

func TestEvaluate_WeakestTieBreak(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	tests := []struct {
		name     string
		seed     []types.ActiveKeyword
		expected string
	}{
		{
			name: "oldest update loses",
			seed: []types.ActiveKeyword{
				{Term: "a", Score: 4, UpdatedAt: newer},
				{Term: "b", Score: 4, UpdatedAt: older},
			},
			expected: "b",
		},
		{
			name: "term order breaks identical timestamps",
			seed: []types.ActiveKeyword{
				{Term: "zeta", Score: 4, UpdatedAt: older},
				{Term: "eta", Score: 4, UpdatedAt: older},
			},
			expected: "eta",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, projectID := setup(t, 2, tt.seed...)
			result, err := a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{
				{Term: "new", Score: 9},
			})
			require.NoError(t, err)
			require.NotNil(t, result.Weakest)
			assert.Equal(t, tt.expected, result.Weakest.Term)
		})
	}
}

func TestEvaluate_BestTieTakesFirst(t *testing.T) {
	a, _, projectID := setup(t, 1)

	result, err := a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{
		{Term: "first", Score: 7},
		{Term: "second", Score: 7},
	})
	require.NoError(t, err)
	assert.Equal(t, "first", result.Best.Term)
}

func TestEvaluate_NoCandidates(t *testing.T) {
	a, _, projectID := setup(t, 1)

	result, err := a.Evaluate(context.Background(), projectID, nil)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeNoCandidates, result.Outcome)
}

func TestEvaluate_CancelledBeforeCommit(t *testing.T) {
	a, store, projectID := setup(t, 1, types.ActiveKeyword{Term: "alpha", Score: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Evaluate(ctx, projectID, []types.CandidateOpportunity{{Term: "beta", Score: 9}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"alpha"}, activeTerms(t, store, projectID))
}

func TestEvaluate_InvariantViolationOnLoad(t *testing.T) {
	a, _, projectID := setup(t, 1,
		types.ActiveKeyword{Term: "alpha", Score: 1},
		types.ActiveKeyword{Term: "beta", Score: 2},
	)

	_, err := a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{{Term: "gamma", Score: 9}})
	var violation *types.InvariantViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, types.RuleCapacityExceeded, violation.Rule)
	assert.False(t, types.IsRetryable(err))
}

// staleStore simulates a concurrent writer landing between read and commit.
type staleStore struct {
	*db.MemStore
}

func (s staleStore) CommitSwap(ctx context.Context, projectID uuid.UUID, _ int64, plan types.SwapPlan) error {
	return s.MemStore.CommitSwap(ctx, projectID, -1, plan)
}

func TestEvaluate_ConcurrentWriterConflict(t *testing.T) {
	_, store, projectID := setup(t, 1, types.ActiveKeyword{Term: "alpha", Score: 1})
	a, err := NewArbiter(staleStore{store}, 1, nil)
	require.NoError(t, err)

	_, err = a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{{Term: "beta", Score: 9}})
	var conflict *types.PersistenceConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, types.IsRetryable(err))
	assert.Equal(t, []string{"alpha"}, activeTerms(t, store, projectID))
}

// rejectingStore fails every commit with a fixed error.
type rejectingStore struct {
	*db.MemStore
	err error
}

func (s rejectingStore) CommitSwap(context.Context, uuid.UUID, int64, types.SwapPlan) error {
	return s.err
}

func TestEvaluate_CommitRejectionsAreInvariantViolations(t *testing.T) {
	tests := []struct {
		name      string
		commitErr error
		rule      string
	}{
		{"capacity exceeded", db.ErrCapacityExceeded, types.RuleCapacityExceeded},
		{"duplicate term", db.ErrDuplicateKeyword, types.RuleDuplicateActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, store, projectID := setup(t, 2, types.ActiveKeyword{Term: "alpha", Score: 1})
			a, err := NewArbiter(rejectingStore{MemStore: store, err: tt.commitErr}, 2, nil)
			require.NoError(t, err)

			_, err = a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{{Term: "beta", Score: 9}})
			var violation *types.InvariantViolation
			require.ErrorAs(t, err, &violation)
			assert.Equal(t, tt.rule, violation.Rule)
			assert.Equal(t, projectID.String(), violation.ProjectID)
			assert.Contains(t, violation.Detail, "beta")
			assert.False(t, types.IsRetryable(err))
			assert.Equal(t, []string{"alpha"}, activeTerms(t, store, projectID))
		})
	}
}

func TestEvaluate_OtherCommitErrorsAreWrapped(t *testing.T) {
	_, store, projectID := setup(t, 2)
	a, err := NewArbiter(rejectingStore{MemStore: store, err: errors.New("connection reset")}, 2, nil)
	require.NoError(t, err)

	_, err = a.Evaluate(context.Background(), projectID, []types.CandidateOpportunity{{Term: "beta", Score: 9}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit swap")
	var violation *types.InvariantViolation
	assert.False(t, errors.As(err, &violation))
}
