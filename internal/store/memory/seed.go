// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package memory

import (
	"time"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/profiles"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedItems returns the demo catalog.
func SeedItems() []catalog.Item {
	return []catalog.Item{
		{
			ID:      "1",
			OwnerID: "2",
			Tags:    []string{"indoor", "statement", "bright-light"},
			Listing: catalog.Listing{
				Name:            "Fiddle Leaf Fig",
				Species:         "Ficus lyrata",
				ImageURL:        "https://images.unsplash.com/photo-1586770285491-944efbbc1bb9?w=400&h=400&fit=crop",
				Price:           45,
				Size:            "large",
				LightNeeds:      "high",
				WaterNeeds:      "medium",
				Description:     "Beautiful fiddle leaf fig, perfect for bright corners. Has been my plant baby for 2 years but moving to a smaller apartment.",
				Location:        "Brooklyn, NY",
				DeliveryOptions: []string{"pickup", "local delivery"},
				OwnerName:       "Sarah",
				OwnerAvatar:     "https://images.unsplash.com/photo-1494790108755-2616b612b786?w=150&h=150&fit=crop&crop=face",
				IsFeatured:      true,
				CreatedAt:       day("2024-01-15"),
			},
		},
		{
			ID:      "2",
			OwnerID: "3",
			Tags:    []string{"beginner", "low-maintenance", "air-purifying"},
			Listing: catalog.Listing{
				Name:            "Snake Plant",
				Species:         "Sansevieria trifasciata",
				ImageURL:        "https://images.unsplash.com/photo-1493663284031-b7e3aaa4cab7?w=400&h=400&fit=crop",
				Price:           25,
				Size:            "medium",
				LightNeeds:      "low",
				WaterNeeds:      "low",
				Description:     "Super low maintenance snake plant. Great for beginners or busy plant parents!",
				Location:        "Manhattan, NY",
				DeliveryOptions: []string{"pickup"},
				OwnerName:       "Mike",
				IsFeatured:      true,
				CreatedAt:       day("2024-01-20"),
			},
		},
		{
			ID:      "3",
			OwnerID: "4",
			Tags:    []string{"trendy", "statement", "climbing"},
			Listing: catalog.Listing{
				Name:            "Monstera Deliciosa",
				Species:         "Monstera deliciosa",
				ImageURL:        "https://images.unsplash.com/photo-1545239705-1564e58b9e4a?w=400&h=400&fit=crop",
				Price:           35,
				Size:            "large",
				LightNeeds:      "medium",
				WaterNeeds:      "medium",
				Description:     "Gorgeous monstera with beautiful fenestrations. Comes with a moss pole for support.",
				Location:        "Queens, NY",
				DeliveryOptions: []string{"pickup", "local delivery"},
				OwnerName:       "Emma",
				CreatedAt:       day("2024-01-18"),
			},
		},
		{
			ID:      "4",
			OwnerID: "5",
			Tags:    []string{"propagation", "beginner", "trailing"},
			Listing: catalog.Listing{
				Name:            "Pothos Collection",
				Species:         "Epipremnum aureum",
				ImageURL:        catalog.DefaultImageURL,
				Price:           20,
				Size:            "small",
				LightNeeds:      "low",
				WaterNeeds:      "low",
				Description:     "Set of 3 pothos cuttings in water. Perfect for propagation enthusiasts!",
				Location:        "Brooklyn, NY",
				DeliveryOptions: []string{"pickup"},
				OwnerName:       "Alex",
				CreatedAt:       day("2024-01-22"),
			},
		},
	}
}

// SeedProfiles returns the owners of the demo catalog.
func SeedProfiles() []profiles.Profile {
	return []profiles.Profile{
		{ID: "2", FullName: "Sarah", Email: "sarah@example.com", Location: "Brooklyn, NY", AvatarURL: "https://images.unsplash.com/photo-1494790108755-2616b612b786?w=150&h=150&fit=crop&crop=face"},
		{ID: "3", FullName: "Mike", Email: "mike@example.com", Location: "Manhattan, NY"},
		{ID: "4", FullName: "Emma", Email: "emma@example.com", Location: "Queens, NY"},
		{ID: "5", FullName: "Alex", Email: "alex@example.com", Location: "Brooklyn, NY"},
	}
}
