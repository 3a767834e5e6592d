// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package wal journals favorite writes in BadgerDB so that a like or
// unlike accepted while the favorites store is unreachable reaches the
// store later. One entry is kept per (user, plant): a newer intent
// overwrites an older one, so replay only ever applies the latest.
package wal

import "time"

// Config holds journal configuration.
type Config struct {
	// Enabled controls whether favorite writes are journaled.
	Enabled bool

	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the journal in memory. Entries do not survive a restart.
	InMemory bool

	// SyncWrites fsyncs every journal write.
	SyncWrites bool

	// ReplayInterval is the time between replay passes.
	ReplayInterval time.Duration

	// ReplayRate caps store calls per second during replay.
	ReplayRate float64

	// MaxAttempts is how many replay failures an entry survives before it
	// is abandoned.
	MaxAttempts int

	// RetryBackoff is the base of the exponential backoff between attempts.
	RetryBackoff time.Duration

	// EntryTTL expires unreplayed entries. Zero keeps them forever.
	EntryTTL time.Duration

	// GCInterval is the time between value log garbage collections.
	GCInterval time.Duration

	// CloseTimeout bounds Close.
	CloseTimeout time.Duration
}

// DefaultConfig returns the default journal configuration.
func DefaultConfig() Config {
	return Config{
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
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Path == "" && !c.InMemory {
		return &ConfigError{Field: "Path", Message: "journal path is required"}
	}
	if c.ReplayInterval <= 0 {
		return &ConfigError{Field: "ReplayInterval", Message: "must be positive"}
	}
	if c.ReplayRate <= 0 {
		return &ConfigError{Field: "ReplayRate", Message: "must be positive"}
	}
	if c.MaxAttempts < 1 {
		return &ConfigError{Field: "MaxAttempts", Message: "must be at least 1"}
	}
	if c.EntryTTL < 0 {
		return &ConfigError{Field: "EntryTTL", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "journal config error: " + e.Field + ": " + e.Message
}
