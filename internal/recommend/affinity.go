// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package recommend ranks swipe candidates by tag affinity.
//
// The user's favorites are folded into a TagFrequencyTable: for each tag,
// the number of favorited plants that carry it. A candidate scores the sum
// of the table entries for its own tags. Candidates are ordered by score,
// highest first, with ties kept in catalog order so the same inputs always
// produce the same sequence.
//
// Ranking happens once when a swipe session starts. The returned slice is
// a snapshot and never changes when favorites change afterwards.
package recommend

import "github.com/tomtom215/verdure/internal/catalog"

// TagFrequencyTable maps a tag to how many favorited items carry it.
type TagFrequencyTable map[string]int

// BuildTagFrequency counts tags across the items in favs. Favorites not
// present in items contribute nothing. Tags are counted once per item.
func BuildTagFrequency(items []catalog.Item, favs catalog.IDSet) TagFrequencyTable {
	table := make(TagFrequencyTable)
	if len(favs) == 0 {
		return table
	}
	for i := range items {
		if !favs.Has(items[i].ID) {
			continue
		}
		counted := make(map[string]struct{}, len(items[i].Tags))
		for _, tag := range items[i].Tags {
			if _, dup := counted[tag]; dup {
				continue
			}
			counted[tag] = struct{}{}
			table[tag]++
		}
	}
	return table
}

// Score sums the table entries for the item's tags. Unknown tags add zero.
func (t TagFrequencyTable) Score(item *catalog.Item) int {
	score := 0
	for _, tag := range item.Tags {
		score += t[tag]
	}
	return score
}
