// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package catalog

import (
	"errors"
	"testing"
)

func fixtureItems() []Item {
	return []Item{
		{ID: "1", OwnerID: "u2", Listing: Listing{Name: "Fiddle Leaf Fig", Species: "Ficus lyrata", Price: 45, Size: "large", LightNeeds: "high", IsFeatured: true}},
		{ID: "2", OwnerID: "u3", Listing: Listing{Name: "Snake Plant", Species: "Sansevieria trifasciata", Price: 25, Size: "medium", LightNeeds: "low", IsFeatured: true}},
		{ID: "3", OwnerID: "u4", Listing: Listing{Name: "Monstera Deliciosa", Species: "Monstera deliciosa", Price: 35, Size: "large", LightNeeds: "medium", Description: "Comes with a moss pole"}},
		{ID: "4", OwnerID: "u2", Listing: Listing{Name: "Pothos Collection", Species: "Epipremnum aureum", Price: 20, Size: "small", LightNeeds: "low", IsFeatured: true}},
		{ID: "5", OwnerID: "u5", Listing: Listing{Name: "Calathea", Species: "Calathea orbifolia", Price: 30, Size: "medium", LightNeeds: "medium", IsFeatured: true}},
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter matches all", Filter{}, []string{"1", "2", "3", "4", "5"}},
		{"query name case-insensitive", Filter{Query: "SNAKE"}, []string{"2"}},
		{"query species", Filter{Query: "ficus"}, []string{"1"}},
		{"query description", Filter{Query: "moss pole"}, []string{"3"}},
		{"size", Filter{Size: "large"}, []string{"1", "3"}},
		{"light", Filter{LightNeeds: "low"}, []string{"2", "4"}},
		{"max price inclusive", Filter{MaxPrice: 30}, []string{"2", "4", "5"}},
		{"combined", Filter{Size: "medium", MaxPrice: 26}, []string{"2"}},
		{"no match", Filter{Query: "cactus"}, []string{}},
	}

	items := fixtureItems()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ids(tt.filter.Apply(items)); !equalIDs(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeatured(t *testing.T) {
	t.Parallel()

	got := ids(Featured(fixtureItems(), FeaturedLimit))
	if want := []string{"1", "2", "4"}; !equalIDs(got, want) {
		t.Errorf("Featured() = %v, want %v", got, want)
	}
	if got := Featured(fixtureItems(), 0); len(got) != 0 {
		t.Errorf("Featured(0) = %v", ids(got))
	}
}

func TestOwnedBy(t *testing.T) {
	t.Parallel()

	if got := ids(OwnedBy(fixtureItems(), "u2")); !equalIDs(got, []string{"1", "4"}) {
		t.Errorf("OwnedBy(u2) = %v", got)
	}
	if got := OwnedBy(fixtureItems(), "nobody"); len(got) != 0 {
		t.Errorf("OwnedBy(nobody) = %v", ids(got))
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	got := ids(Select(fixtureItems(), NewIDSet("5", "2", "missing")))
	if !equalIDs(got, []string{"2", "5"}) {
		t.Errorf("Select() = %v", got)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	it, err := Find(fixtureItems(), "3")
	if err != nil || it.Name != "Monstera Deliciosa" {
		t.Errorf("Find(3) = %+v, %v", it, err)
	}
	if _, err := Find(fixtureItems(), "99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(99) err = %v, want ErrNotFound", err)
	}
}
