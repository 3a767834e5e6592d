// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		log   func(*slog.Logger)
		level string
	}{
		{"debug", func(l *slog.Logger) { l.Debug("m") }, `"level":"debug"`},
		{"info", func(l *slog.Logger) { l.Info("m") }, `"level":"info"`},
		{"warn", func(l *slog.Logger) { l.Warn("m") }, `"level":"warn"`},
		{"error", func(l *slog.Logger) { l.Error("m") }, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			l := slog.New(NewSlogHandler(zerolog.New(&buf).Level(zerolog.TraceLevel)))
			tt.log(l)
			if zerolog.GlobalLevel() > zerolog.DebugLevel && tt.name == "debug" {
				return
			}
			if !strings.Contains(buf.String(), tt.level) {
				t.Errorf("got %s, want %s", buf.String(), tt.level)
			}
		})
	}
}

func TestSlogHandler_AttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := slog.New(NewSlogHandler(zerolog.New(&buf)))
	l = l.WithGroup("restart").With("service", "http")
	l.Info("service restarted",
		"count", 3,
		"backoff", 2*time.Second,
		slog.Group("cause", "kind", "panic"),
	)

	out := buf.String()
	for _, want := range []string{
		`"restart.service":"http"`,
		`"restart.count":3`,
		`"restart.cause.kind":"panic"`,
		`"message":"service restarted"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler(zerolog.Nop())
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}
