// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package catalog

import "strings"

// FeaturedLimit is how many featured plants the home page shows.
const FeaturedLimit = 3

// Filter narrows the browse view. Zero-valued fields match everything.
type Filter struct {
	// Query matches name, species, or description, case-insensitively.
	Query string `json:"q" validate:"max=200"`

	Size       string `json:"size" validate:"omitempty,oneof=small medium large"`
	LightNeeds string `json:"light" validate:"omitempty,oneof=low medium high"`

	// MaxPrice keeps items priced at or below it. Zero disables the bound.
	MaxPrice float64 `json:"max_price" validate:"gte=0"`
}

// Match reports whether it passes every set criterion.
func (f *Filter) Match(it *Item) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(it.Name), q) &&
			!strings.Contains(strings.ToLower(it.Species), q) &&
			!strings.Contains(strings.ToLower(it.Description), q) {
			return false
		}
	}
	if f.Size != "" && it.Size != f.Size {
		return false
	}
	if f.LightNeeds != "" && it.LightNeeds != f.LightNeeds {
		return false
	}
	if f.MaxPrice > 0 && it.Price > f.MaxPrice {
		return false
	}
	return true
}

// Apply returns the matching items in input order.
func (f *Filter) Apply(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for i := range items {
		if f.Match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// Featured returns the first n featured items.
func Featured(items []Item, n int) []Item {
	out := make([]Item, 0, n)
	for i := range items {
		if len(out) == n {
			break
		}
		if items[i].IsFeatured {
			out = append(out, items[i])
		}
	}
	return out
}

// OwnedBy returns the listings of userID.
func OwnedBy(items []Item, userID string) []Item {
	out := make([]Item, 0)
	for i := range items {
		if items[i].OwnerID == userID {
			out = append(out, items[i])
		}
	}
	return out
}

// Select returns the items whose ID is in ids, in catalog order.
func Select(items []Item, ids IDSet) []Item {
	out := make([]Item, 0, len(ids))
	for i := range items {
		if ids.Has(items[i].ID) {
			out = append(out, items[i])
		}
	}
	return out
}

// Find returns the item with the given ID.
func Find(items []Item, id string) (Item, error) {
	for i := range items {
		if items[i].ID == id {
			return items[i], nil
		}
	}
	return Item{}, ErrNotFound
}
