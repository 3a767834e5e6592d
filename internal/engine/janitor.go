// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package engine

import (
	"context"
	"time"
)

// Janitor periodically closes idle workspaces. Expired workspaces are
// otherwise only noticed when their user comes back.
type Janitor struct {
	engine   *Engine
	interval time.Duration
}

// NewJanitor sweeps e every interval.
func NewJanitor(e *Engine, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{engine: e, interval: interval}
}

// Serve implements suture.Service.
func (j *Janitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := j.engine.Sweep(); n > 0 {
				j.engine.logger.Debug().Int("closed", n).Msg("Closed idle workspaces")
			}
		}
	}
}

func (j *Janitor) String() string { return "workspace-janitor" }
