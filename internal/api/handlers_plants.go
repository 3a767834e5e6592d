// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/identity"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/models"
	"github.com/tomtom215/verdure/internal/profiles"
	"github.com/tomtom215/verdure/internal/validation"
)

// parseFilter reads the browse filter from the query string:
// q, size, light, max_price.
func parseFilter(r *http.Request) (catalog.Filter, error) {
	q := r.URL.Query()
	f := catalog.Filter{
		Query:      q.Get("q"),
		Size:       q.Get("size"),
		LightNeeds: q.Get("light"),
	}
	if raw := q.Get("max_price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, errors.New("max_price must be a number")
		}
		f.MaxPrice = price
	}
	return f, nil
}

// ListPlants handles GET /api/v1/plants.
func (h *Handler) ListPlants(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&filter); verr != nil {
		respondValidation(w, verr)
		return
	}

	items, err := h.catalog.ListItems(r.Context())
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, filter.Apply(items), start)
}

// FeaturedPlants handles GET /api/v1/plants/featured.
func (h *Handler) FeaturedPlants(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	items, err := h.catalog.ListItems(r.Context())
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, catalog.Featured(items, catalog.FeaturedLimit), start)
}

// GetPlant handles GET /api/v1/plants/{id}.
func (h *Handler) GetPlant(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	items, err := h.catalog.ListItems(r.Context())
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	item, err := catalog.Find(items, chi.URLParam(r, "id"))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, item, start)
}

// CreatePlant handles POST /api/v1/plants. The listing is attributed to
// the caller, with the name and avatar taken from their profile.
func (h *Handler) CreatePlant(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := identity.UserFrom(r.Context())

	var listing catalog.NewListing
	if err := decodeJSON(w, r, h.maxBody, &listing); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&listing); verr != nil {
		respondValidation(w, verr)
		return
	}

	if h.profiles != nil {
		profile, err := h.profiles.GetProfile(r.Context(), userID)
		switch {
		case err == nil:
			listing.OwnerName = profile.DisplayName()
			listing.OwnerAvatar = profile.AvatarURL
		case errors.Is(err, profiles.ErrNotFound):
		default:
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Profile lookup failed, listing without owner name")
		}
	}

	item, err := h.catalog.AddListing(r.Context(), userID, listing)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("plant_id", item.ID).Msg("Plant listed")
	respondData(w, http.StatusCreated, item, start)
}
