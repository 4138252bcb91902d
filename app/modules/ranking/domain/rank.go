package rankingdomain

import (
	"sort"

	"github.com/Cadence-Arcade/rankcore/internal/sharedtypes"
)

// RankedPlayer is the slice of player state the rank pass reads and writes.
type RankedPlayer struct {
	ID      sharedtypes.PlayerID
	Country sharedtypes.Country
	Pp      float64
	Banned  bool

	Rank        int
	CountryRank int
}

// Eligible reports whether the player participates in rank assignment.
func (p *RankedPlayer) Eligible() bool {
	return !p.Banned && p.Pp > 0
}

// AssignRanks assigns contiguous global rank and per-country rank in one
// linear pass over the eligible population. Ineligible players are zeroed
// and excluded from country bookkeeping. The sort is stable: callers supply
// players in storage order (ascending player ID) and that order breaks
// exact pp ties, so reruns over unchanged input are byte-identical.
func AssignRanks(players []*RankedPlayer) {
	eligible := make([]*RankedPlayer, 0, len(players))
	for _, p := range players {
		if p.Eligible() {
			eligible = append(eligible, p)
		} else {
			p.Rank = 0
			p.CountryRank = 0
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Pp > eligible[j].Pp
	})

	// Country buckets are not pre-sorted; a player's country rank is how
	// many compatriots were assigned a better-or-equal global rank first.
	countryCounters := make(map[sharedtypes.Country]int)
	for i, p := range eligible {
		p.Rank = i + 1

		counter := countryCounters[p.Country]
		if counter == 0 {
			counter = 1
		}
		p.CountryRank = counter
		countryCounters[p.Country] = counter + 1
	}
}
