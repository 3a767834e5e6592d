// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/identity"
	"github.com/tomtom215/verdure/internal/models"
	"github.com/tomtom215/verdure/internal/profiles"
)

// Me handles GET /api/v1/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.profiles == nil {
		respondEngineError(w, r, profiles.ErrNotFound)
		return
	}
	profile, err := h.profiles.GetProfile(r.Context(), identity.UserFrom(r.Context()))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, profile, start)
}

// MyListings handles GET /api/v1/me/listings.
func (h *Handler) MyListings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	items, err := h.catalog.ListItems(r.Context())
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, catalog.OwnedBy(items, identity.UserFrom(r.Context())), start)
}

// Favorites handles GET /api/v1/me/favorites.
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	items, err := h.engine.Favorites(r.Context(), identity.UserFrom(r.Context()))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, items, start)
}

// FavoriteStatus handles GET /api/v1/me/favorites/{id}.
func (h *Handler) FavoriteStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	liked, err := h.engine.IsFavorite(r.Context(), identity.UserFrom(r.Context()), id)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, models.FavoriteChange{PlantID: id, Liked: liked}, start)
}

// LikePlant handles PUT /api/v1/me/favorites/{id}.
func (h *Handler) LikePlant(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	changed, err := h.engine.LikePlant(r.Context(), identity.UserFrom(r.Context()), id)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, models.FavoriteChange{PlantID: id, Liked: true, Changed: changed}, start)
}

// UnlikePlant handles DELETE /api/v1/me/favorites/{id}.
func (h *Handler) UnlikePlant(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	changed, err := h.engine.UnlikePlant(r.Context(), identity.UserFrom(r.Context()), id)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, models.FavoriteChange{PlantID: id, Liked: false, Changed: changed}, start)
}

// Warnings handles GET /api/v1/me/warnings. Each call drains the queue.
func (h *Handler) Warnings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	warnings, err := h.engine.Warnings(identity.UserFrom(r.Context()))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	out := make([]models.StoreWarning, 0, len(warnings))
	for _, warn := range warnings {
		out = append(out, models.StoreWarning{
			PlantID: warn.ItemID,
			Op:      warn.Op.String(),
			Message: warn.String(),
			At:      warn.At,
		})
	}
	respondData(w, http.StatusOK, out, start)
}

// Recommendations handles GET /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	items, err := h.engine.GetRecommendedPlants(r.Context(), identity.UserFrom(r.Context()))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, items, start)
}

// Logout handles POST /api/v1/me/logout. It drops the server-side
// workspace; the client discards its own token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.engine.Logout(identity.UserFrom(r.Context())); err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"logged_out": true}, start)
}
