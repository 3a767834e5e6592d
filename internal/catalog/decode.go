// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package catalog

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/metrics"
	"github.com/tomtom215/verdure/internal/validation"
)

// row is the catalog store schema. Columns not listed here are ignored.
type row struct {
	ID              string    `json:"id" validate:"required"`
	OwnerID         string    `json:"owner_id" validate:"required"`
	Tags            []string  `json:"tags"`
	Name            string    `json:"name"`
	Species         string    `json:"species"`
	Image           string    `json:"image"`
	Price           float64   `json:"price" validate:"gte=0"`
	Size            string    `json:"size"`
	LightNeeds      string    `json:"light_needs"`
	WaterNeeds      string    `json:"water_needs"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	DeliveryOptions []string  `json:"delivery_options"`
	OwnerName       string    `json:"owner_name"`
	OwnerAvatar     string    `json:"owner_avatar"`
	IsFeatured      bool      `json:"is_featured"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r *row) item() Item {
	return Item{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		Tags:    NormalizeTags(r.Tags),
		Listing: Listing{
			Name:            r.Name,
			Species:         r.Species,
			ImageURL:        r.Image,
			Price:           r.Price,
			Size:            r.Size,
			LightNeeds:      r.LightNeeds,
			WaterNeeds:      r.WaterNeeds,
			Description:     r.Description,
			Location:        r.Location,
			DeliveryOptions: r.DeliveryOptions,
			OwnerName:       r.OwnerName,
			OwnerAvatar:     r.OwnerAvatar,
			IsFeatured:      r.IsFeatured,
			CreatedAt:       r.CreatedAt,
		},
	}
}

// Decode parses a JSON array of catalog rows. A row that cannot be decoded
// or fails validation is skipped with a warning; only a payload that is not
// an array is an error. Duplicate IDs keep the first row.
func Decode(data []byte) ([]Item, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog rows: %w", err)
	}

	logger := logging.WithComponent("catalog")
	items := make([]Item, 0, len(raw))
	seen := make(IDSet, len(raw))

	for i, msg := range raw {
		var r row
		if err := json.Unmarshal(msg, &r); err != nil {
			metrics.CatalogRowsSkipped.WithLabelValues("decode").Inc()
			logger.Warn().Err(err).Int("row", i).Msg("Skipping undecodable catalog row")
			continue
		}
		if verr := validation.ValidateStruct(&r); verr != nil {
			metrics.CatalogRowsSkipped.WithLabelValues("invalid").Inc()
			logger.Warn().Str("plant_id", r.ID).Int("row", i).Str("reason", verr.Error()).
				Msg("Skipping invalid catalog row")
			continue
		}
		if seen.Has(r.ID) {
			metrics.CatalogRowsSkipped.WithLabelValues("duplicate").Inc()
			logger.Warn().Str("plant_id", r.ID).Msg("Skipping duplicate catalog row")
			continue
		}
		seen[r.ID] = struct{}{}
		items = append(items, r.item())
	}

	return items, nil
}
