// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package auth

import (
	"context"
	"fmt"
	"time"

	supa "github.com/supabase-community/supabase-go"

	"github.com/tomtom215/verdure/internal/cache"
)

// LookupFunc resolves a token to its user through a remote auth service.
type LookupFunc func(token string) (Principal, error)

// SupabaseVerifier verifies tokens against the Supabase Auth API. Verified
// tokens are remembered for a short TTL to avoid a round trip per request.
type SupabaseVerifier struct {
	lookup LookupFunc
	cache  *cache.LRU[Principal]
}

// NewSupabaseVerifier verifies through client.Auth.
func NewSupabaseVerifier(client *supa.Client, cacheTTL time.Duration) *SupabaseVerifier {
	return NewLookupVerifier(func(token string) (Principal, error) {
		user, err := client.Auth.WithToken(token).GetUser()
		if err != nil {
			return Principal{}, err
		}
		return Principal{UserID: user.ID.String(), Email: user.Email}, nil
	}, cacheTTL)
}

// NewLookupVerifier wraps an arbitrary lookup with the token cache.
func NewLookupVerifier(lookup LookupFunc, cacheTTL time.Duration) *SupabaseVerifier {
	return &SupabaseVerifier{
		lookup: lookup,
		cache:  cache.New[Principal](4096, cacheTTL, nil),
	}
}

// Verify returns the cached principal or asks the auth service.
func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrMissingToken
	}
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	if p, ok := v.cache.Get(token); ok {
		return p, nil
	}

	p, err := v.lookup(token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if p.UserID == "" {
		return Principal{}, ErrInvalidToken
	}
	v.cache.Add(token, p)
	return p, nil
}
