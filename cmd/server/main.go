// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package main is the entry point for the Verdure server.
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml, then environment (Koanf v2)
//  2. Stores: Supabase, or the in-memory demo backend
//  3. Favorites write path: circuit breaker, then the BadgerDB journal
//  4. Engine: cached catalog, per-user workspaces, swipe event bus
//  5. Authentication: local JWT check or the Supabase Auth API
//  6. Supervisor tree: journal replay, workspace janitor, decision
//     metrics, HTTP server
//
// SIGINT and SIGTERM stop the tree, then pending favorite writes are
// flushed before the journal and event bus are closed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/verdure/internal/api"
	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/config"
	"github.com/tomtom215/verdure/internal/engine"
	"github.com/tomtom215/verdure/internal/events"
	"github.com/tomtom215/verdure/internal/favorites"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/supervisor"
	"github.com/tomtom215/verdure/internal/supervisor/services"
	"github.com/tomtom215/verdure/internal/wal"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logOpts := cfg.LoggingOptions()
	logOpts.Version = version
	logging.Init(logOpts)

	logging.Info().
		Str("version", version).
		Str("store", cfg.Store.Backend).
		Str("auth_mode", cfg.Auth.Mode).
		Bool("journal", cfg.Journal.Enabled).
		Msg("Starting Verdure")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := openBackend(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize store")
	}

	// Favorites write path: store <- breaker <- journal <- ledger.
	breaker := favorites.NewBreakerStore(backend.favorites, cfg.BreakerSettings())
	var ledgerStore favorites.Store = breaker
	var journal *wal.Journal
	if cfg.Journal.Enabled {
		journal, err = wal.Open(cfg.JournalOptions())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open favorites journal")
		}
		ledgerStore = wal.NewJournaledStore(breaker, journal)
	}

	items := catalog.NewCachedStore(backend.catalog, cfg.Catalog.CacheTTL)
	bus := events.NewBus(cfg.Events.Buffer)

	opts := cfg.EngineOptions()
	opts.Observer = bus
	eng := engine.New(items, ledgerStore, opts)

	authMiddleware, err := newAuthMiddleware(cfg, backend)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authentication")
	}

	// The HTTP service needs its own shutdown timeout to drain first.
	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout + 5*time.Second
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer
	tree.AddDataService(engine.NewJanitor(eng, cfg.Workspace.SweepInterval))
	if journal != nil {
		tree.AddDataService(wal.NewReplayer(journal, breaker))
	}

	// Messaging layer
	tree.AddMessagingService(services.NewDecisionMetricsService(bus))

	// API layer
	handler := api.NewHandler(eng, items, backend.profiles, api.HandlerConfig{
		Version:     version,
		MaxBodySize: cfg.API.MaxBodySize,
		Checks:      healthChecks(items, breaker, journal),
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(chiMiddlewareConfig(cfg)), authMiddleware)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// Serve returns once ctx is canceled and every layer has stopped.
	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	shutdown(eng, journal, bus, cfg.Server.ShutdownTimeout)
	logging.Info().Msg("Verdure stopped gracefully")
}

// shutdown flushes every workspace before closing what the flush writes to.
func shutdown(eng *engine.Engine, journal *wal.Journal, bus *events.Bus, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := eng.Shutdown(ctx); err != nil {
		logging.Warn().Err(err).Msg("Some favorite writes were not flushed")
	}
	if journal != nil {
		if err := journal.Close(); err != nil {
			logging.Err(err).Msg("Failed to close favorites journal")
		}
	}
	if err := bus.Close(); err != nil {
		logging.Err(err).Msg("Failed to close event bus")
	}
}
