// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package auth turns a bearer token into the signed-in user's ID.
//
// Two verifiers are available. JWTVerifier checks the HS256 signature of a
// Supabase access token locally with the project's JWT secret.
// SupabaseVerifier asks the Supabase Auth API and caches the answer
// briefly. The HTTP middleware uses either one and stores the user ID in
// the request context via the identity package.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken is returned when a request carries no token.
	ErrMissingToken = errors.New("missing access token")

	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid access token")
)

// Principal is the verified caller.
type Principal struct {
	UserID string
	Email  string
}

// Verifier checks an access token.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// Claims are the Supabase access token claims Verdure reads. The user ID
// is the subject.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier requires a secret of at least 32 bytes.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters, got %d", len(secret))
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

// Verify parses the token, checks signature and expiry, and returns the
// subject as the user ID.
func (v *JWTVerifier) Verify(_ context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: claims.Subject, Email: claims.Email}, nil
}

// Sign issues a token for userID valid for ttl. Used by the memory
// backend for local development and by tests.
func (v *JWTVerifier) Sign(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
