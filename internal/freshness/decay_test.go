package freshness

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

func TestCapture(t *testing.T) {
	projectID := uuid.New()
	at := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	active := []types.ActiveKeyword{
		{Term: "dog food"},
		{Term: "cat toys", TargetURL: "https://x.com/toys"},
		{Term: "bird seed"},
	}
	rankings := []types.RankedPage{
		{Term: "dog food", URL: "https://x.com/food-old", Rank: 9},
		{Term: "dog food", URL: "https://x.com/food", Rank: 4, Volume: 800, CPC: 1.5},
		{Term: "cat toys", URL: "https://x.com/blog", Rank: 2},
		{Term: "cat toys", URL: "https://x.com/toys", Rank: 7},
		{Term: "not tracked", URL: "https://x.com/other", Rank: 1},
	}

	snaps := Capture(projectID, active, rankings, at)
	require.Len(t, snaps, 3)

	assert.Equal(t, "bird seed", snaps[0].Term)
	assert.Zero(t, snaps[0].Rank)
	assert.Equal(t, types.UnrankedPosition, snaps[0].Position())

	assert.Equal(t, "cat toys", snaps[1].Term)
	assert.Equal(t, "https://x.com/toys", snaps[1].URL)
	assert.Equal(t, 7, snaps[1].Rank)

	assert.Equal(t, "dog food", snaps[2].Term)
	assert.Equal(t, "https://x.com/food", snaps[2].URL)
	assert.Equal(t, 4, snaps[2].Rank)
	assert.Equal(t, 800, snaps[2].Volume)

	for _, s := range snaps {
		assert.Equal(t, projectID, s.ProjectID)
		assert.Equal(t, at, s.CapturedAt)
	}
}

func TestFindDecayed(t *testing.T) {
	previous := []types.RankSnapshot{
		{Term: "slipped", URL: "https://x.com/a", Rank: 4, Volume: 100, CPC: 1},
		{Term: "small slip", Rank: 5},
		{Term: "gone", URL: "https://x.com/gone", Rank: 18, Volume: 50, CPC: 2},
		{Term: "was weak", Rank: 40},
		{Term: "was unranked", Rank: 0},
		{Term: "improved", Rank: 15},
	}
	current := []types.RankSnapshot{
		{Term: "slipped", URL: "https://x.com/a", Rank: 12, Volume: 100, CPC: 1},
		{Term: "small slip", Rank: 7},
		{Term: "gone"},
		{Term: "was weak", Rank: 90},
		{Term: "was unranked", Rank: 50},
		{Term: "improved", Rank: 6},
		{Term: "new", Rank: 60},
	}

	decayed := FindDecayed(previous, current, DefaultParams())
	require.Len(t, decayed, 2)

	assert.Equal(t, types.Decay{
		Term: "gone", URL: "https://x.com/gone", PreviousRank: 18, CurrentRank: 0,
		Drop: types.UnrankedPosition - 18, Impact: 100,
	}, decayed[0])
	assert.Equal(t, types.Decay{
		Term: "slipped", URL: "https://x.com/a", PreviousRank: 4, CurrentRank: 12, Drop: 8, Impact: 100,
	}, decayed[1])
}

func TestFindDecayed_ThresholdIsInclusive(t *testing.T) {
	previous := []types.RankSnapshot{{Term: "a", Rank: 10}}

	decayed := FindDecayed(previous, []types.RankSnapshot{{Term: "a", Rank: 13}}, DefaultParams())
	assert.Len(t, decayed, 1)

	decayed = FindDecayed(previous, []types.RankSnapshot{{Term: "a", Rank: 12}}, DefaultParams())
	assert.Empty(t, decayed)
}

func TestFindDecayed_TieBreaks(t *testing.T) {
	previous := []types.RankSnapshot{
		{Term: "b", Rank: 5, Volume: 10, CPC: 1},
		{Term: "a", Rank: 5, Volume: 10, CPC: 1},
		{Term: "rich", Rank: 5, Volume: 1000, CPC: 1},
	}
	current := []types.RankSnapshot{
		{Term: "b", Rank: 10},
		{Term: "a", Rank: 10},
		{Term: "rich", Rank: 10},
	}

	decayed := FindDecayed(previous, current, DefaultParams())
	require.Len(t, decayed, 3)
	assert.Equal(t, []string{"rich", "a", "b"}, []string{decayed[0].Term, decayed[1].Term, decayed[2].Term})
}

func TestFindDecayed_NoHistory(t *testing.T) {
	assert.Empty(t, FindDecayed(nil, []types.RankSnapshot{{Term: "a", Rank: 90}}, DefaultParams()))
}
