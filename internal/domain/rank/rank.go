// Package rank computes leaderboard orderings. Ranking is a pure projection
// of current balances; there is no stored rank field anywhere.
package rank

import (
	"sort"

	"eco_missions/internal/domain/model"
)

// Rank orders entries by descending coin balance. The sort is stable, so ties
// keep the relative order of the input slice (insertion/join order), which
// makes the ranking deterministic. Rank numbers are assigned 1..n. The input
// slice is not modified.
func Rank(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	ranked := make([]model.LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Coins > ranked[j].Coins
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
