// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/verdure/config.yaml",
	"/etc/verdure/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supabase: SupabaseConfig{
			PlantsTable:    "plants",
			FavoritesTable: "favorites",
			ProfilesTable:  "profiles",
		},
		Auth: AuthConfig{
			Mode:          "supabase",
			TokenCacheTTL: time.Minute,
		},
		Store: StoreConfig{
			Backend: "supabase",
			Seed:    true,
		},
		Catalog: CatalogConfig{
			CacheTTL: 30 * time.Second,
		},
		Ledger: LedgerConfig{
			WarningBuffer: 32,
			WriteTimeout:  10 * time.Second,
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Journal: JournalConfig{
			Enabled:        true,
			Path:           "/data/journal",
			SyncWrites:     true,
			ReplayInterval: 30 * time.Second,
			ReplayRate:     20,
			MaxAttempts:    50,
			RetryBackoff:   5 * time.Second,
			EntryTTL:       72 * time.Hour,
			GCInterval:     time.Hour,
			CloseTimeout:   30 * time.Second,
		},
		Workspace: WorkspaceConfig{
			MaxUsers:      10000,
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
			LoadTimeout:   10 * time.Second,
			LoadRetry:     5 * time.Second,
		},
		Events: EventsConfig{
			Buffer: 256,
		},
		API: APIConfig{
			RateLimit:   120,
			RateWindow:  time.Minute,
			CORSOrigins: []string{"*"},
			MaxBodySize: 1 << 20,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config File: optional YAML config file (if exists)
//  3. Environment Variables: override any setting
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// SUPABASE_URL -> supabase.url, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from env.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"port":                  "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supabase
	"supabase_url":             "supabase.url",
	"supabase_key":             "supabase.key",
	"supabase_anon_key":        "supabase.key",
	"supabase_plants_table":    "supabase.plants_table",
	"supabase_favorites_table": "supabase.favorites_table",
	"supabase_profiles_table":  "supabase.profiles_table",

	// Auth
	"auth_mode":            "auth.mode",
	"supabase_jwt_secret":  "auth.jwt_secret",
	"jwt_secret":           "auth.jwt_secret",
	"auth_token_cache_ttl": "auth.token_cache_ttl",

	// Store
	"store_backend": "store.backend",
	"store_seed":    "store.seed",

	// Catalog
	"catalog_cache_ttl": "catalog.cache_ttl",

	// Ledger
	"ledger_warning_buffer": "ledger.warning_buffer",
	"ledger_write_timeout":  "ledger.write_timeout",

	// Breaker
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	// Journal
	"journal_enabled":         "journal.enabled",
	"journal_path":            "journal.path",
	"journal_in_memory":       "journal.in_memory",
	"journal_sync_writes":     "journal.sync_writes",
	"journal_replay_interval": "journal.replay_interval",
	"journal_replay_rate":     "journal.replay_rate",
	"journal_max_attempts":    "journal.max_attempts",
	"journal_retry_backoff":   "journal.retry_backoff",
	"journal_entry_ttl":       "journal.entry_ttl",
	"journal_gc_interval":     "journal.gc_interval",

	// Workspace
	"workspace_max_users":      "workspace.max_users",
	"workspace_idle_ttl":       "workspace.idle_ttl",
	"workspace_sweep_interval": "workspace.sweep_interval",
	"workspace_load_timeout":   "workspace.load_timeout",
	"workspace_load_retry":     "workspace.load_retry",

	// Events
	"events_buffer": "events.buffer",

	// API
	"rate_limit_requests": "api.rate_limit",
	"rate_limit_window":   "api.rate_window",
	"disable_rate_limit":  "api.rate_limit_disabled",
	"cors_origins":        "api.cors_origins",
	"api_max_body_size":   "api.max_body_size",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are skipped so unrelated environment
// does not leak into the config.
//
// Examples:
//   - SUPABASE_URL -> supabase.url
//   - HTTP_PORT -> server.port
//   - JOURNAL_PATH -> journal.path
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
