// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/verdure/internal/identity"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/models"
)

// CookieName is the Supabase browser session cookie read when no
// Authorization header is present.
const CookieName = "sb-access-token"

// Middleware attaches the verified user to the request context.
type Middleware struct {
	verifier Verifier
}

// NewMiddleware creates a middleware backed by verifier.
func NewMiddleware(verifier Verifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// Authenticate verifies the token when one is present. Requests without
// a token pass through anonymously; a bad token is rejected with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if errors.Is(err, ErrMissingToken) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			writeUnauthorized(w, models.ErrCodeInvalidToken, err.Error())
			return
		}

		p, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token verification failed")
			writeUnauthorized(w, models.ErrCodeInvalidToken, "invalid or expired access token")
			return
		}

		ctx := identity.WithUser(r.Context(), p.UserID)
		ctx = logging.ContextWithUserID(ctx, p.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects anonymous requests with 401 AUTH_REQUIRED. It must
// run after Authenticate.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := identity.Require(identity.UserFrom(r.Context())); err != nil {
			writeUnauthorized(w, models.ErrCodeAuthRequired, "sign in to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken reads "Authorization: Bearer <token>", falling back to the
// session cookie.
func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			return "", ErrMissingToken
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	data, err := json.Marshal(&models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    &models.APIError{Code: code, Message: message},
	})
	if err != nil {
		http.Error(w, message, http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="verdure"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(data)
}
