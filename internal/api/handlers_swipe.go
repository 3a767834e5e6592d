// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/verdure/internal/identity"
	"github.com/tomtom215/verdure/internal/models"
	"github.com/tomtom215/verdure/internal/swipe"
)

var errUnknownAction = errors.New("unknown swipe action")

var swipeActions = map[string]swipe.EventKind{
	"like":    swipe.EventLike,
	"pass":    swipe.EventPass,
	"undo":    swipe.EventUndo,
	"restart": swipe.EventRestart,
}

func sessionView(s swipe.Snapshot) models.SessionView {
	return models.SessionView{
		State:      s.StateName,
		Position:   s.Position,
		Total:      s.Total,
		Current:    s.Current,
		LastAction: s.LastAction,
	}
}

// StartSession handles POST /api/v1/swipe/session. Any running session
// is replaced.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap, err := h.engine.StartSession(r.Context(), identity.UserFrom(r.Context()))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, sessionView(snap), start)
}

// GetSession handles GET /api/v1/swipe/session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	session, err := h.engine.Session(identity.UserFrom(r.Context()))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, sessionView(session.Snapshot()), start)
}

// SwipeAction handles POST /api/v1/swipe/session/{action}. An action that
// is not valid in the current state is reported with applied=false and a
// 200, not an error.
func (h *Handler) SwipeAction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	kind, ok := swipeActions[chi.URLParam(r, "action")]
	if !ok {
		respondEngineError(w, r, errUnknownAction)
		return
	}
	applied, snap, err := h.engine.Swipe(identity.UserFrom(r.Context()), kind)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, models.SwipeResult{Applied: applied, Session: sessionView(snap)}, start)
}
