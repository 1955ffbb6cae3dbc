package conflict

import (
	"sort"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

// DefaultMaxRank limits conflict detection to URLs ranking on the first five pages.
const DefaultMaxRank = 50

// FindGroups groups a site's ranking rows by term and returns every term where
// two or more distinct URLs rank at or above maxRank. For a URL listed twice
// under one term the better rank is kept. Groups are sorted by term.
func FindGroups(pages []types.RankedPage, maxRank int) []types.ConflictGroup {
	if maxRank <= 0 {
		maxRank = DefaultMaxRank
	}

	byTerm := make(map[string]map[string]types.ConflictEntry)
	for _, p := range pages {
		if p.Term == "" || p.URL == "" || p.Rank < 1 || p.Rank > maxRank {
			continue
		}
		urls, ok := byTerm[p.Term]
		if !ok {
			urls = make(map[string]types.ConflictEntry)
			byTerm[p.Term] = urls
		}
		if existing, ok := urls[p.URL]; ok && existing.Rank <= p.Rank {
			continue
		}
		urls[p.URL] = types.ConflictEntry{
			URL:       p.URL,
			Rank:      p.Rank,
			Backlinks: p.Backlinks,
			Traffic:   p.Traffic,
		}
	}

	var groups []types.ConflictGroup
	for term, urls := range byTerm {
		if len(urls) < 2 {
			continue
		}
		entries := make([]types.ConflictEntry, 0, len(urls))
		for _, e := range urls {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Rank != entries[j].Rank {
				return entries[i].Rank < entries[j].Rank
			}
			return entries[i].URL < entries[j].URL
		})
		groups = append(groups, types.ConflictGroup{Term: term, Entries: entries})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Term < groups[j].Term })
	return groups
}
