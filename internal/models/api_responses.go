// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package models holds the HTTP wire types shared by the API and its
// middleware.
package models

import (
	"time"

	"github.com/tomtom215/verdure/internal/catalog"
)

// APIResponse is the envelope of every HTTP response.
//
//	{
//	  "status": "error",
//	  "error": {"code": "SWIPE_BUSY", "message": "another swipe is in progress"},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// Error codes carried in APIError.Code.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeAuthRequired = "AUTH_REQUIRED"
	ErrCodeInvalidToken = "INVALID_TOKEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeNoSession    = "NO_SESSION"
	ErrCodeSwipeBusy    = "SWIPE_BUSY"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	ErrCodeStore        = "STORE_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// APIError is a machine-readable error code plus a message for people.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SessionView is the swipe session as the client sees it.
type SessionView struct {
	State      string        `json:"state"`
	Position   int           `json:"position"`
	Total      int           `json:"total"`
	Current    *catalog.Item `json:"current,omitempty"`
	LastAction string        `json:"last_action"`
}

// SwipeResult is the outcome of a swipe action. Applied is false when the
// action was not valid in the current state.
type SwipeResult struct {
	Applied bool        `json:"applied"`
	Session SessionView `json:"session"`
}

// FavoriteChange is the outcome of a like or unlike.
type FavoriteChange struct {
	PlantID string `json:"plant_id"`
	Liked   bool   `json:"liked"`
	Changed bool   `json:"changed"`
}

// StoreWarning is a favorites write that did not reach the store. The
// like or unlike still stands locally.
type StoreWarning struct {
	PlantID string    `json:"plant_id,omitempty"`
	Op      string    `json:"op"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Health is the health endpoint payload.
type Health struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     string            `json:"uptime"`
	Components map[string]string `json:"components"`
}
