// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/engine"
	"github.com/tomtom215/verdure/internal/identity"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/models"
	"github.com/tomtom215/verdure/internal/profiles"
	"github.com/tomtom215/verdure/internal/swipe"
	"github.com/tomtom215/verdure/internal/validation"
)

// sanitizeLogValue escapes control characters so client input cannot
// forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes the envelope. Responses are per-user and never cached.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope timed from start.
func respondData(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError writes an error envelope. err, when set, is logged and not
// sent to the client.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}

// respondValidation writes a 400 for validator failures.
func respondValidation(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details},
	})
}

// respondEngineError maps domain sentinels to HTTP statuses. Anything
// unrecognized is a store failure.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrAuthRequired):
		respondError(w, http.StatusUnauthorized, models.ErrCodeAuthRequired, "sign in to continue", nil)
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "plant not found", nil)
	case errors.Is(err, profiles.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "profile not found", nil)
	case errors.Is(err, engine.ErrNoSession):
		respondError(w, http.StatusNotFound, models.ErrCodeNoSession, "start a swipe session first", nil)
	case errors.Is(err, swipe.ErrBusy):
		respondError(w, http.StatusConflict, models.ErrCodeSwipeBusy, "another swipe is in progress", nil)
	case errors.Is(err, errUnknownAction):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "unknown swipe action", nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", sanitizeLogValue(r.URL.Path)).Msg("Request failed")
		respondError(w, http.StatusBadGateway, models.ErrCodeStore, "the plant store is unavailable, try again shortly", nil)
	}
}

// decodeJSON reads a bounded JSON body into v. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
