// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-that-is-at-least-32-characters-long"

func newTestVerifier(t *testing.T) *JWTVerifier {
	t.Helper()
	v, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}
	return v
}

func TestNewJWTVerifier_ShortSecret(t *testing.T) {
	if _, err := NewJWTVerifier("short"); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := newTestVerifier(t)
	token, err := v.Sign("user-1", "u1@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	p, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UserID != "user-1" || p.Email != "u1@example.com" {
		t.Errorf("Verify() = %+v", p)
	}
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := newTestVerifier(t)
	other, _ := NewJWTVerifier("another-secret-that-is-also-32-characters!")

	expired, _ := v.Sign("user-1", "", -time.Minute)
	wrongKey, _ := other.Sign("user-1", "", time.Hour)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"wrong key", wrongKey, ErrInvalidToken},
		{"no subject", noSubject, ErrInvalidToken},
		{"alg none", noneAlg, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("Verify() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLookupVerifier_CachesSuccess(t *testing.T) {
	calls := 0
	v := NewLookupVerifier(func(token string) (Principal, error) {
		calls++
		if token == "bad" {
			return Principal{}, errors.New("401 from auth service")
		}
		return Principal{UserID: "user-" + token}, nil
	}, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := v.Verify(ctx, "abc")
		if err != nil || p.UserID != "user-abc" {
			t.Fatalf("Verify() = %+v, %v", p, err)
		}
	}
	if calls != 1 {
		t.Errorf("lookup called %d times, want 1", calls)
	}

	for i := 0; i < 2; i++ {
		if _, err := v.Verify(ctx, "bad"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(bad) = %v, want ErrInvalidToken", err)
		}
	}
	if calls != 3 {
		t.Errorf("failed lookups should not be cached: calls = %d, want 3", calls)
	}
}
