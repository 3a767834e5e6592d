// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// validMemoryConfig passes Validate without any external service.
func validMemoryConfig() *Config {
	cfg := defaultConfig()
	cfg.Store.Backend = "memory"
	cfg.Auth.Mode = "jwt"
	cfg.Auth.JWTSecret = strings.Repeat("s", 32)
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Store.Backend != "supabase" {
		t.Errorf("Store.Backend = %q, want supabase", cfg.Store.Backend)
	}
	if cfg.Supabase.FavoritesTable != "favorites" {
		t.Errorf("Supabase.FavoritesTable = %q, want favorites", cfg.Supabase.FavoritesTable)
	}
	if cfg.Journal.ReplayInterval != 30*time.Second {
		t.Errorf("Journal.ReplayInterval = %v, want 30s", cfg.Journal.ReplayInterval)
	}
	if cfg.Workspace.IdleTTL != 30*time.Minute {
		t.Errorf("Workspace.IdleTTL = %v, want 30m", cfg.Workspace.IdleTTL)
	}
	if !reflect.DeepEqual(cfg.API.CORSOrigins, []string{"*"}) {
		t.Errorf("API.CORSOrigins = %v, want [*]", cfg.API.CORSOrigins)
	}
}

func TestConvertersMatchDefaults(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.LedgerOptions(); got.WarningBuffer != 32 || got.WriteTimeout != 10*time.Second {
		t.Errorf("LedgerOptions() = %+v", got)
	}
	if got := cfg.BreakerSettings(); got.Name != "favorites-store" || got.FailureRatio != 0.6 {
		t.Errorf("BreakerSettings() = %+v", got)
	}
	if got := cfg.JournalOptions(); got.MaxAttempts != 50 || got.Path != "/data/journal" {
		t.Errorf("JournalOptions() = %+v", got)
	}
	if got := cfg.EngineOptions(); got.MaxUsers != 10000 || got.Ledger.WarningBuffer != 32 || got.LoadRetryInterval != 5*time.Second {
		t.Errorf("EngineOptions() = %+v", got)
	}
	if got := cfg.SupabaseOptions(); got.PlantsTable != "plants" || got.ProfilesTable != "profiles" {
		t.Errorf("SupabaseOptions() = %+v", got)
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid memory", mutate: func(*Config) {}},
		{
			name: "valid supabase",
			mutate: func(c *Config) {
				c.Store.Backend = "supabase"
				c.Auth.Mode = "supabase"
				c.Supabase.URL = "https://demo.supabase.co"
				c.Supabase.Key = "anon"
			},
		},
		{
			name:    "supabase without url",
			mutate:  func(c *Config) { c.Store.Backend = "supabase" },
			wantErr: "SUPABASE_URL is required",
		},
		{
			name: "supabase bad url",
			mutate: func(c *Config) {
				c.Store.Backend = "supabase"
				c.Supabase.URL = "ftp://x"
				c.Supabase.Key = "k"
			},
			wantErr: "SUPABASE_URL must be",
		},
		{
			name: "supabase without key",
			mutate: func(c *Config) {
				c.Store.Backend = "supabase"
				c.Supabase.URL = "https://demo.supabase.co"
			},
			wantErr: "SUPABASE_KEY is required",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "sqlite" },
			wantErr: "STORE_BACKEND",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "short" },
			wantErr: "SUPABASE_JWT_SECRET",
		},
		{
			name:    "supabase auth on memory store",
			mutate:  func(c *Config) { c.Auth.Mode = "supabase" },
			wantErr: "requires STORE_BACKEND=supabase",
		},
		{
			name:    "unknown auth mode",
			mutate:  func(c *Config) { c.Auth.Mode = "basic" },
			wantErr: "AUTH_MODE",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "bad environment",
			mutate:  func(c *Config) { c.Server.Environment = "staging" },
			wantErr: "ENVIRONMENT",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
		{
			name:    "bad failure ratio",
			mutate:  func(c *Config) { c.Breaker.FailureRatio = 1.5 },
			wantErr: "BREAKER_FAILURE_RATIO",
		},
		{
			name:    "zero max users",
			mutate:  func(c *Config) { c.Workspace.MaxUsers = 0 },
			wantErr: "WORKSPACE_MAX_USERS",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.API.RateLimit = 0 },
			wantErr: "RATE_LIMIT_REQUESTS",
		},
		{
			name: "rate limit disabled skips limits",
			mutate: func(c *Config) {
				c.API.RateLimit = 0
				c.API.RateLimitDisabled = true
			},
		},
		{
			name:    "wildcard cors in production",
			mutate:  func(c *Config) { c.Server.Environment = "production" },
			wantErr: "CORS_ORIGINS",
		},
		{
			name:    "journal without path",
			mutate:  func(c *Config) { c.Journal.Path = "" },
			wantErr: "journal path is required",
		},
		{
			name: "journal disabled without path",
			mutate: func(c *Config) {
				c.Journal.Enabled = false
				c.Journal.Path = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validMemoryConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"SUPABASE_URL":        "supabase.url",
		"SUPABASE_ANON_KEY":   "supabase.key",
		"HTTP_PORT":           "server.port",
		"JOURNAL_PATH":        "journal.path",
		"CORS_ORIGINS":        "api.cors_origins",
		"SUPABASE_JWT_SECRET": "auth.jwt_secret",
		"HOME":                "",
		"PATH":                "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("SUPABASE_JWT_SECRET", strings.Repeat("x", 40))
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("WORKSPACE_IDLE_TTL", "45m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("JOURNAL_IN_MEMORY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Workspace.IdleTTL != 45*time.Minute {
		t.Errorf("Workspace.IdleTTL = %v, want 45m", cfg.Workspace.IdleTTL)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.API.CORSOrigins, want) {
		t.Errorf("API.CORSOrigins = %v, want %v", cfg.API.CORSOrigins, want)
	}
	if !cfg.Journal.InMemory {
		t.Error("Journal.InMemory should be true")
	}
	if cfg.Supabase.PlantsTable != "plants" {
		t.Errorf("defaults lost: PlantsTable = %q", cfg.Supabase.PlantsTable)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 7000
store:
  backend: memory
auth:
  mode: jwt
  jwt_secret: "0123456789abcdef0123456789abcdef"
catalog:
  cache_ttl: 5s
journal:
  in_memory: true
api:
  cors_origins:
    - https://plants.example
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("env should override file: Port = %d", cfg.Server.Port)
	}
	if cfg.Catalog.CacheTTL != 5*time.Second {
		t.Errorf("Catalog.CacheTTL = %v, want 5s", cfg.Catalog.CacheTTL)
	}
	if !reflect.DeepEqual(cfg.API.CORSOrigins, []string{"https://plants.example"}) {
		t.Errorf("API.CORSOrigins = %v", cfg.API.CORSOrigins)
	}
}

func TestLoad_InvalidFails(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("STORE_BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("Load() = %v, want validation error", err)
	}
}
