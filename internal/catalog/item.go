// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package catalog is the read-only view of listed plants.
//
// Items enter through Decode, which maps catalog store rows onto a fixed
// schema and drops rows that fail validation. After that an Item is never
// mutated; rankers and filters return new slices that share the same
// Item values.
package catalog

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a plant ID is not in the catalog.
var ErrNotFound = errors.New("plant not found")

// Item is one listed plant.
type Item struct {
	// ID is the opaque, unique listing identifier.
	ID string `json:"id"`

	// OwnerID is the user who listed the plant.
	OwnerID string `json:"owner_id"`

	// Tags drive affinity scoring. Always normalized (see NormalizeTags).
	Tags []string `json:"tags"`

	Listing
}

// Listing is the display payload of an Item. The engine never reads it.
type Listing struct {
	Name            string    `json:"name"`
	Species         string    `json:"species"`
	ImageURL        string    `json:"image"`
	Price           float64   `json:"price"`
	Size            string    `json:"size"`
	LightNeeds      string    `json:"light_needs"`
	WaterNeeds      string    `json:"water_needs"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	DeliveryOptions []string  `json:"delivery_options"`
	OwnerName       string    `json:"owner_name"`
	OwnerAvatar     string    `json:"owner_avatar,omitempty"`
	IsFeatured      bool      `json:"is_featured"`
	CreatedAt       time.Time `json:"created_at"`
}

// HasTag reports whether the item carries tag.
func (it *Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizeTags trims each tag, drops empties, and collapses duplicates
// keeping the first occurrence. Tags are case-sensitive.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// IDSet is a set of item IDs.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set is empty.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}
