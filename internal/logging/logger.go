// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package logging provides the process-wide zerolog logger for Verdure.
//
// Initialize once from main and log through the package helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("user_id", uid).Msg("Swipe session started")
//
// Components derive child loggers with WithComponent so every line carries
// a "component" field. Request-scoped code should use Ctx(ctx) which adds
// the request and user identifiers stored by the HTTP middleware.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	Level  string // trace, debug, info, warn, error, disabled
	Format string // json or console
	Caller bool

	// Timestamp adds the "time" field. Disable it for golden-output tests.
	Timestamp bool

	// Version is stamped on every line next to service=verdure so mixed
	// deployments can be told apart.
	Version string

	Output io.Writer // nil means os.Stderr
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

//nolint:gochecknoinits // logging must work before main calls Init
func init() {
	initLogger(DefaultConfig())
}

// Init reconfigures the global logger. Safe to call more than once.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	initLogger(cfg)
}

// initLogger must be called with mu held.
func initLogger(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	lc := zerolog.New(out).With()
	if cfg.Timestamp {
		lc = lc.Timestamp()
	}
	if cfg.Caller {
		lc = lc.Caller()
	}
	if cfg.Version != "" {
		lc = lc.Str("service", "verdure").Str("version", cfg.Version)
	}
	log = lc.Logger()
}

// parseLevel maps a config string to a level. Anything unrecognized is info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger replaces the global logger. Intended for tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// With creates a child logger context.
func With() zerolog.Context {
	mu.RLock()
	defer mu.RUnlock()
	return log.With()
}

// WithComponent returns a child logger tagged with the component name.
//
//	logger := logging.WithComponent("ledger")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

// current snapshots the global logger so events are built outside the lock.
func current() *zerolog.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	return &l
}

func Debug() *zerolog.Event { return current().Debug() }
func Info() *zerolog.Event  { return current().Info() }
func Warn() *zerolog.Event  { return current().Warn() }
func Error() *zerolog.Event { return current().Error() }

// Fatal logs and then calls os.Exit(1).
func Fatal() *zerolog.Event { return current().Fatal() }

// Err logs at error level when err is non-nil, info otherwise.
func Err(err error) *zerolog.Event { return current().Err(err) }

// NewTestLogger creates a JSON logger writing to w, for capturing output in tests.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
