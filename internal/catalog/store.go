// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package catalog

import (
	"context"
	"time"
)

// DefaultImageURL is used when a new listing has no photo.
const DefaultImageURL = "https://images.unsplash.com/photo-1416879595882-3373a0480b5b?w=400&h=400&fit=crop"

// Store is the catalog backend. ListItems returns the full collection,
// newest listing first.
type Store interface {
	ListItems(ctx context.Context) ([]Item, error)
	AddListing(ctx context.Context, ownerID string, listing NewListing) (Item, error)
}

// NewListing is the add-plant form.
type NewListing struct {
	Name            string   `json:"name" validate:"required,max=120"`
	Species         string   `json:"species" validate:"required,max=120"`
	Description     string   `json:"description" validate:"required,max=2000"`
	Price           float64  `json:"price" validate:"gte=0"`
	Size            string   `json:"size" validate:"omitempty,oneof=small medium large"`
	LightNeeds      string   `json:"light_needs" validate:"omitempty,oneof=low medium high"`
	WaterNeeds      string   `json:"water_needs" validate:"omitempty,oneof=low medium high"`
	ImageURL        string   `json:"image" validate:"omitempty,url"`
	Location        string   `json:"location" validate:"max=120"`
	DeliveryOptions []string `json:"delivery_options" validate:"max=5,dive,max=40"`
	Tags            []string `json:"tags" validate:"max=20,dive,max=40"`
	IsFeatured      bool     `json:"is_featured"`

	// Filled from the owner's profile, not the form.
	OwnerName   string `json:"-"`
	OwnerAvatar string `json:"-"`
}

// Build turns the form into an Item. Care levels default to medium. Tags
// are derived from the care levels and merged with any submitted tags:
// small plants are "compact", low light is "low-maintenance", low water is
// "drought-tolerant", and every listing is "indoor".
func (n *NewListing) Build(id, ownerID string, now time.Time) Item {
	size := orDefault(n.Size, "medium")
	light := orDefault(n.LightNeeds, "medium")
	water := orDefault(n.WaterNeeds, "medium")

	tags := make([]string, 0, len(n.Tags)+4)
	if size == "small" {
		tags = append(tags, "compact")
	}
	if light == "low" {
		tags = append(tags, "low-maintenance")
	}
	if water == "low" {
		tags = append(tags, "drought-tolerant")
	}
	tags = append(tags, n.Tags...)
	tags = append(tags, "indoor")

	image := n.ImageURL
	if image == "" {
		image = DefaultImageURL
	}

	return Item{
		ID:      id,
		OwnerID: ownerID,
		Tags:    NormalizeTags(tags),
		Listing: Listing{
			Name:            n.Name,
			Species:         n.Species,
			ImageURL:        image,
			Price:           n.Price,
			Size:            size,
			LightNeeds:      light,
			WaterNeeds:      water,
			Description:     n.Description,
			Location:        n.Location,
			DeliveryOptions: append([]string{}, n.DeliveryOptions...),
			OwnerName:       n.OwnerName,
			OwnerAvatar:     n.OwnerAvatar,
			IsFeatured:      n.IsFeatured,
			CreatedAt:       now.UTC(),
		},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
