// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package recommend

import (
	"sort"

	"github.com/tomtom215/verdure/internal/catalog"
)

// ScoredItem pairs a candidate with its affinity score.
type ScoredItem struct {
	Item  catalog.Item `json:"item"`
	Score int          `json:"score"`
}

// Rank returns the candidate sequence for userID: every item not owned by
// the user and not already in favs, ordered by affinity score descending.
// Equal scores keep their order from items.
func Rank(items []catalog.Item, favs catalog.IDSet, userID string) []catalog.Item {
	scored := RankScored(items, favs, userID)
	out := make([]catalog.Item, len(scored))
	for i := range scored {
		out[i] = scored[i].Item
	}
	return out
}

// RankScored is Rank with the scores kept.
func RankScored(items []catalog.Item, favs catalog.IDSet, userID string) []ScoredItem {
	table := BuildTagFrequency(items, favs)

	scored := make([]ScoredItem, 0, len(items))
	for i := range items {
		it := &items[i]
		if it.OwnerID == userID || favs.Has(it.ID) {
			continue
		}
		scored = append(scored, ScoredItem{Item: *it, Score: table.Score(it)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
