// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package config loads Verdure's configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: override any setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	ledgerOpts := cfg.LedgerOptions()
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/verdure/internal/engine"
	"github.com/tomtom215/verdure/internal/favorites"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/store/supabase"
	"github.com/tomtom215/verdure/internal/wal"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Supabase  SupabaseConfig  `koanf:"supabase"`
	Auth      AuthConfig      `koanf:"auth"`
	Store     StoreConfig     `koanf:"store"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Ledger    LedgerConfig    `koanf:"ledger"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Journal   JournalConfig   `koanf:"journal"`
	Workspace WorkspaceConfig `koanf:"workspace"`
	Events    EventsConfig    `koanf:"events"`
	API       APIConfig       `koanf:"api"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT
//   - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT
//   - HTTP_SHUTDOWN_TIMEOUT
//   - ENVIRONMENT: development or production
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr is host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether ENVIRONMENT is production.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// SupabaseConfig holds the Supabase project connection.
//
// Environment Variables:
//   - SUPABASE_URL: project URL, e.g. https://xyz.supabase.co
//   - SUPABASE_KEY: anon or service-role key
//   - SUPABASE_PLANTS_TABLE, SUPABASE_FAVORITES_TABLE, SUPABASE_PROFILES_TABLE
type SupabaseConfig struct {
	URL            string `koanf:"url"`
	Key            string `koanf:"key"`
	PlantsTable    string `koanf:"plants_table"`
	FavoritesTable string `koanf:"favorites_table"`
	ProfilesTable  string `koanf:"profiles_table"`
}

// AuthConfig selects how bearer tokens are verified.
//
// Mode "jwt" checks the HS256 signature locally with JWTSecret (the
// project's JWT secret). Mode "supabase" asks the Auth API and caches the
// answer for TokenCacheTTL.
type AuthConfig struct {
	Mode          string        `koanf:"mode"`
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenCacheTTL time.Duration `koanf:"token_cache_ttl"`
}

// StoreConfig selects the backend for catalog, favorites and profiles.
type StoreConfig struct {
	Backend string `koanf:"backend"` // supabase or memory
	Seed    bool   `koanf:"seed"`    // memory backend only: load the demo catalog
}

// CatalogConfig holds catalog cache settings.
type CatalogConfig struct {
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// LedgerConfig tunes the per-user favorites ledger.
type LedgerConfig struct {
	WarningBuffer int           `koanf:"warning_buffer"`
	WriteTimeout  time.Duration `koanf:"write_timeout"`
}

// BreakerConfig tunes the circuit breaker in front of the favorites store.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// JournalConfig holds the BadgerDB write journal settings.
type JournalConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Path           string        `koanf:"path"`
	InMemory       bool          `koanf:"in_memory"`
	SyncWrites     bool          `koanf:"sync_writes"`
	ReplayInterval time.Duration `koanf:"replay_interval"`
	ReplayRate     float64       `koanf:"replay_rate"`
	MaxAttempts    int           `koanf:"max_attempts"`
	RetryBackoff   time.Duration `koanf:"retry_backoff"`
	EntryTTL       time.Duration `koanf:"entry_ttl"`
	GCInterval     time.Duration `koanf:"gc_interval"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
}

// WorkspaceConfig bounds the per-user workspace cache.
type WorkspaceConfig struct {
	MaxUsers      int           `koanf:"max_users"`
	IdleTTL       time.Duration `koanf:"idle_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	LoadTimeout   time.Duration `koanf:"load_timeout"`
	LoadRetry     time.Duration `koanf:"load_retry"` // min gap between reloads of a degraded ledger
}

// EventsConfig tunes the in-process swipe decision bus.
type EventsConfig struct {
	Buffer int64 `koanf:"buffer"`
}

// APIConfig holds HTTP API limits.
type APIConfig struct {
	RateLimit         int           `koanf:"rate_limit"`
	RateWindow        time.Duration `koanf:"rate_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	MaxBodySize       int64         `koanf:"max_body_size"`
}

// LoggingOptions converts to the logging package configuration.
func (c *Config) LoggingOptions() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// SupabaseOptions converts to the Supabase store configuration.
func (c *Config) SupabaseOptions() supabase.Config {
	return supabase.Config{
		URL:            c.Supabase.URL,
		Key:            c.Supabase.Key,
		PlantsTable:    c.Supabase.PlantsTable,
		FavoritesTable: c.Supabase.FavoritesTable,
		ProfilesTable:  c.Supabase.ProfilesTable,
	}
}

// LedgerOptions converts to favorites.Options.
func (c *Config) LedgerOptions() favorites.Options {
	return favorites.Options{
		WarningBuffer: c.Ledger.WarningBuffer,
		WriteTimeout:  c.Ledger.WriteTimeout,
	}
}

// BreakerSettings converts to favorites.BreakerSettings.
func (c *Config) BreakerSettings() favorites.BreakerSettings {
	s := favorites.DefaultBreakerSettings()
	s.MaxRequests = c.Breaker.MaxRequests
	s.Interval = c.Breaker.Interval
	s.Timeout = c.Breaker.Timeout
	s.MinRequests = c.Breaker.MinRequests
	s.FailureRatio = c.Breaker.FailureRatio
	return s
}

// JournalOptions converts to wal.Config.
func (c *Config) JournalOptions() wal.Config {
	return wal.Config{
		Enabled:        c.Journal.Enabled,
		Path:           c.Journal.Path,
		InMemory:       c.Journal.InMemory,
		SyncWrites:     c.Journal.SyncWrites,
		ReplayInterval: c.Journal.ReplayInterval,
		ReplayRate:     c.Journal.ReplayRate,
		MaxAttempts:    c.Journal.MaxAttempts,
		RetryBackoff:   c.Journal.RetryBackoff,
		EntryTTL:       c.Journal.EntryTTL,
		GCInterval:     c.Journal.GCInterval,
		CloseTimeout:   c.Journal.CloseTimeout,
	}
}

// EngineOptions converts to engine.Options. The observer is wired by main.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		MaxUsers:          c.Workspace.MaxUsers,
		IdleTTL:           c.Workspace.IdleTTL,
		LoadTimeout:       c.Workspace.LoadTimeout,
		LoadRetryInterval: c.Workspace.LoadRetry,
		Ledger:            c.LedgerOptions(),
	}
}
