// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/verdure/internal/api"
	"github.com/tomtom215/verdure/internal/auth"
	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/config"
	"github.com/tomtom215/verdure/internal/favorites"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/profiles"
	"github.com/tomtom215/verdure/internal/store/memory"
	"github.com/tomtom215/verdure/internal/store/supabase"
	"github.com/tomtom215/verdure/internal/wal"
)

// demoUserID owns the first seeded listing.
const demoUserID = "2"

// backend is one store seen through each of its roles.
type backend struct {
	catalog   catalog.Store
	favorites favorites.Store
	profiles  profiles.Store
	supabase  *supabase.Store // nil for the memory backend
}

func openBackend(cfg *config.Config) (*backend, error) {
	switch cfg.Store.Backend {
	case "supabase":
		store, err := supabase.New(cfg.SupabaseOptions())
		if err != nil {
			return nil, err
		}
		logging.Info().Str("url", cfg.Supabase.URL).Msg("Using Supabase store")
		return &backend{catalog: store, favorites: store, profiles: store, supabase: store}, nil
	case "memory":
		store := memory.New()
		if cfg.Store.Seed {
			store = memory.NewSeeded()
		}
		logging.Warn().Bool("seeded", cfg.Store.Seed).Msg("Using in-memory store, data is lost on restart")
		return &backend{catalog: store, favorites: store, profiles: store}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newAuthMiddleware(cfg *config.Config, b *backend) (*auth.Middleware, error) {
	switch cfg.Auth.Mode {
	case "supabase":
		if b.supabase == nil {
			return nil, errors.New("supabase auth requires the supabase store backend")
		}
		return auth.NewMiddleware(auth.NewSupabaseVerifier(b.supabase.Client(), cfg.Auth.TokenCacheTTL)), nil
	case "jwt":
		verifier, err := auth.NewJWTVerifier(cfg.Auth.JWTSecret)
		if err != nil {
			return nil, err
		}
		if b.supabase == nil && !cfg.Server.IsProduction() {
			logDemoToken(verifier)
		}
		return auth.NewMiddleware(verifier), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

// logDemoToken prints a token for the seeded demo user so the memory
// backend can be tried without a Supabase project.
func logDemoToken(verifier *auth.JWTVerifier) {
	token, err := verifier.Sign(demoUserID, "sarah@example.com", 24*time.Hour)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to sign demo token")
		return
	}
	logging.Info().Str("user_id", demoUserID).Str("token", token).Msg("Demo access token (development only)")
}

func healthChecks(items catalog.Store, breaker *favorites.BreakerStore, journal *wal.Journal) map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{
		"catalog": func(ctx context.Context) error {
			_, err := items.ListItems(ctx)
			return err
		},
		"favorites": func(context.Context) error {
			if breaker.State() == gobreaker.StateOpen {
				return errors.New("circuit breaker open")
			}
			return nil
		},
	}
	if journal != nil {
		checks["journal"] = func(ctx context.Context) error {
			_, err := journal.Pending(ctx)
			return err
		}
	}
	return checks
}

func chiMiddlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	c := api.DefaultChiMiddlewareConfig()
	c.CORSAllowedOrigins = cfg.API.CORSOrigins
	c.RateLimitRequests = cfg.API.RateLimit
	c.RateLimitWindow = cfg.API.RateWindow
	c.RateLimitDisabled = cfg.API.RateLimitDisabled
	return c
}
