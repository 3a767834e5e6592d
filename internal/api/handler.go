// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package api is Verdure's HTTP surface: catalog browsing, the signed-in
// user's favorites and listings, recommendations, and the swipe session.
// Every response uses the models.APIResponse envelope.
package api

import (
	"context"
	"time"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/engine"
	"github.com/tomtom215/verdure/internal/profiles"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// HandlerConfig holds handler settings.
type HandlerConfig struct {
	Version     string
	MaxBodySize int64
	// Checks are run by the health endpoint, keyed by component name.
	Checks map[string]HealthCheck
}

// Handler serves every API route.
type Handler struct {
	engine   *engine.Engine
	catalog  catalog.Store
	profiles profiles.Store
	checks   map[string]HealthCheck
	version  string
	maxBody  int64
	started  time.Time
}

// NewHandler creates the handler. items should be the same cached store
// the engine reads so a new listing is visible to both.
func NewHandler(e *engine.Engine, items catalog.Store, profs profiles.Store, cfg HandlerConfig) *Handler {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 1 << 20
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		engine:   e,
		catalog:  items,
		profiles: profs,
		checks:   cfg.Checks,
		version:  cfg.Version,
		maxBody:  cfg.MaxBodySize,
		started:  time.Now(),
	}
}
