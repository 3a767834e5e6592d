// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// minJWTSecretLength matches auth.NewJWTVerifier.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateBreaker(); err != nil {
		return err
	}
	if err := c.validateWorkspace(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	j := c.JournalOptions()
	return j.Validate()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production", "test":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development, production or test, got %q", c.Server.Environment)
	}
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "memory":
		return nil
	case "supabase":
		return c.validateSupabase()
	default:
		return fmt.Errorf("STORE_BACKEND must be supabase or memory, got %q", c.Store.Backend)
	}
}

func (c *Config) validateSupabase() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required when STORE_BACKEND=supabase")
	}
	u, err := url.Parse(c.Supabase.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("SUPABASE_URL must be an http(s) URL, got %q", c.Supabase.URL)
	}
	if c.Supabase.Key == "" {
		return fmt.Errorf("SUPABASE_KEY is required when STORE_BACKEND=supabase")
	}
	return nil
}

func (c *Config) validateAuth() error {
	switch c.Auth.Mode {
	case "jwt":
		if len(c.Auth.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("SUPABASE_JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
		}
		return nil
	case "supabase":
		if c.Store.Backend != "supabase" {
			return fmt.Errorf("AUTH_MODE=supabase requires STORE_BACKEND=supabase")
		}
		if c.Auth.TokenCacheTTL < 0 {
			return fmt.Errorf("AUTH_TOKEN_CACHE_TTL must not be negative")
		}
		return nil
	default:
		return fmt.Errorf("AUTH_MODE must be supabase or jwt, got %q", c.Auth.Mode)
	}
}

func (c *Config) validateBreaker() error {
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.Breaker.FailureRatio)
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateWorkspace() error {
	if c.Workspace.MaxUsers < 1 {
		return fmt.Errorf("WORKSPACE_MAX_USERS must be at least 1, got %d", c.Workspace.MaxUsers)
	}
	if c.Workspace.SweepInterval <= 0 {
		return fmt.Errorf("WORKSPACE_SWEEP_INTERVAL must be positive")
	}
	if c.Workspace.LoadTimeout < 0 || c.Workspace.LoadRetry < 0 {
		return fmt.Errorf("WORKSPACE_LOAD_TIMEOUT and WORKSPACE_LOAD_RETRY must not be negative")
	}
	if c.Ledger.WarningBuffer < 0 {
		return fmt.Errorf("LEDGER_WARNING_BUFFER must not be negative")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.RateLimitDisabled {
		return nil
	}
	if c.API.RateLimit < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.API.RateLimit)
	}
	if c.API.RateWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.Server.IsProduction() {
		for _, o := range c.API.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	return nil
}
