// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/verdure/internal/auth"
	"github.com/tomtom215/verdure/internal/middleware"
	"github.com/tomtom215/verdure/internal/models"
)

// Router wires the handler, middleware, and authentication together.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, chiMiddleware *ChiMiddleware, authMiddleware *auth.Middleware) *Router {
	return &Router{handler: handler, chiMiddleware: chiMiddleware, auth: authMiddleware}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to every route, in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "no such endpoint", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/v1/health", router.handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(router.auth.Authenticate)

		// Browsing is public.
		r.Route("/plants", func(r chi.Router) {
			r.Get("/", router.handler.ListPlants)
			r.Get("/featured", router.handler.FeaturedPlants)
			r.Get("/{id}", router.handler.GetPlant)
			r.With(auth.RequireUser).Post("/", router.handler.CreatePlant)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)

			r.Get("/recommendations", router.handler.Recommendations)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", router.handler.Me)
				r.Get("/listings", router.handler.MyListings)
				r.Get("/favorites", router.handler.Favorites)
				r.Get("/favorites/{id}", router.handler.FavoriteStatus)
				r.Put("/favorites/{id}", router.handler.LikePlant)
				r.Delete("/favorites/{id}", router.handler.UnlikePlant)
				r.Get("/warnings", router.handler.Warnings)
				r.Post("/logout", router.handler.Logout)
			})
		})

		r.Route("/swipe/session", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitSwipe())
			r.Use(auth.RequireUser)

			r.Post("/", router.handler.StartSession)
			r.Get("/", router.handler.GetSession)
			r.Post("/{action}", router.handler.SwipeAction)
		})
	})

	return r
}
