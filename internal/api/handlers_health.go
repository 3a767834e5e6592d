// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/tomtom215/verdure/internal/models"
)

const healthCheckTimeout = 2 * time.Second

// Health handles GET /api/v1/health. Any failing check reports
// "degraded" with a 503 so load balancers can drain the instance.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "healthy"
	components := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := h.checks[name](ctx)
		cancel()
		if err != nil {
			status = "degraded"
			components[name] = "error: " + err.Error()
			continue
		}
		components[name] = "ok"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondData(w, code, models.Health{
		Status:     status,
		Version:    h.version,
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Components: components,
	}, start)
}
