// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package identity carries the authenticated user identifier through the
// engine. An empty identifier means the caller is not signed in; every
// operation that ranks, likes, or starts a swipe session rejects it with
// ErrAuthRequired so the presentation layer can redirect to login.
package identity

import (
	"context"
	"errors"
)

// ErrAuthRequired is returned when an operation needs a signed-in user.
var ErrAuthRequired = errors.New("authentication required")

type contextKey struct{}

// Require returns ErrAuthRequired for an empty user ID.
func Require(userID string) error {
	if userID == "" {
		return ErrAuthRequired
	}
	return nil
}

// WithUser stores the user ID in ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserFrom returns the user ID stored by WithUser, or "".
func UserFrom(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
