// Package freshness tracks the rank history of active keywords and finds
// pages that used to rank well and have slipped.
package freshness

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// Params decide when a slip counts as decay.
type Params struct {
	// MinDrop is the number of positions a keyword must lose.
	MinDrop int `yaml:"min_drop" json:"min_drop" validate:"gte=1"`
	// MaxPreviousRank limits decay to keywords that were doing well before.
	MaxPreviousRank int `yaml:"max_previous_rank" json:"max_previous_rank" validate:"gte=1"`
}

// DefaultParams flags a loss of 3 or more positions from the top 20.
func DefaultParams() Params {
	return Params{MinDrop: 3, MaxPreviousRank: 20}
}

// Capture builds one snapshot per active keyword from the current rankings.
// A keyword with a target URL is tracked on that URL, otherwise on its best
// ranked page. Keywords no page ranks for are captured with rank 0.
func Capture(projectID uuid.UUID, active []types.ActiveKeyword, rankings []types.RankedPage, at time.Time) []types.RankSnapshot {
	byTerm := make(map[string][]types.RankedPage)
	for _, r := range rankings {
		byTerm[r.Term] = append(byTerm[r.Term], r)
	}

	snaps := make([]types.RankSnapshot, 0, len(active))
	for _, k := range active {
		snap := types.RankSnapshot{ProjectID: projectID, Term: k.Term, URL: k.TargetURL, CapturedAt: at}
		if row, ok := pick(byTerm[k.Term], k.TargetURL); ok {
			snap.URL = row.URL
			snap.Rank = row.Rank
			snap.Volume = row.Volume
			snap.CPC = row.CPC
		}
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Term < snaps[j].Term })
	return snaps
}

func pick(rows []types.RankedPage, targetURL string) (types.RankedPage, bool) {
	if len(rows) == 0 {
		return types.RankedPage{}, false
	}
	if targetURL != "" {
		for _, r := range rows {
			if r.URL == targetURL {
				return r, true
			}
		}
	}
	best := rows[0]
	for _, r := range rows[1:] {
		if r.Rank < best.Rank {
			best = r
		}
	}
	return best, true
}

// FindDecayed compares the current snapshots with the previous ones and
// returns every keyword that lost at least MinDrop positions from a rank no
// worse than MaxPreviousRank. Terms without history are skipped. The result
// is ordered by drop, then impact, then term.
func FindDecayed(previous, current []types.RankSnapshot, p Params) []types.Decay {
	before := make(map[string]types.RankSnapshot, len(previous))
	for _, s := range previous {
		before[s.Term] = s
	}

	var decayed []types.Decay
	for _, now := range current {
		prev, ok := before[now.Term]
		if !ok || prev.Rank <= 0 || prev.Rank > p.MaxPreviousRank {
			continue
		}
		drop := now.Position() - prev.Rank
		if drop < p.MinDrop {
			continue
		}
		url := now.URL
		if url == "" {
			url = prev.URL
		}
		volume, cpc := now.Volume, now.CPC
		if volume == 0 {
			volume, cpc = prev.Volume, prev.CPC
		}
		decayed = append(decayed, types.Decay{
			Term:         now.Term,
			URL:          url,
			PreviousRank: prev.Rank,
			CurrentRank:  now.Rank,
			Drop:         drop,
			Impact:       float64(volume) * cpc,
		})
	}

	sort.SliceStable(decayed, func(i, j int) bool {
		if decayed[i].Drop != decayed[j].Drop {
			return decayed[i].Drop > decayed[j].Drop
		}
		if decayed[i].Impact != decayed[j].Impact {
			return decayed[i].Impact > decayed[j].Impact
		}
		return decayed[i].Term < decayed[j].Term
	})
	return decayed
}
