// Dwellmap - Floorplan Presence Heatmap Playback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dwellmap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router binds the Handler to Chi routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware factory uses defaults.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(RequestLogger)

	r.Handle("/metrics", promhttp.Handler())

	// Health is not rate limited so probes never see 429.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics)

		r.Get("/areas", h.Areas)
		r.Get("/heatmap", h.Heatmap)
		r.Get("/heatmap/renderer", h.HeatmapRenderer)
		r.Get("/statistics", h.Statistics)
		r.Post("/timeline", h.Timeline)
		r.Post("/timeline/chart", h.TimelineChart)
		r.Get("/ws", h.WebSocket)

		r.Route("/playback/sessions", func(r chi.Router) {
			r.Get("/", h.PlaybackSessionList)
			r.Post("/", h.PlaybackSessionCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.PlaybackSessionGet)
				r.Delete("/", h.PlaybackSessionDelete)
				r.Get("/frame", h.PlaybackSessionFrame)
				r.Post("/pause", h.PlaybackPause)
				r.Post("/resume", h.PlaybackResume)
				r.Post("/stop", h.PlaybackStop)
				r.Post("/seek", h.PlaybackSeek)
				r.Post("/seek/begin", h.PlaybackSeekBegin)
				r.Post("/seek/end", h.PlaybackSeekEnd)
				r.Put("/interval", h.PlaybackInterval)
			})
		})

		r.Route("/layouts", func(r chi.Router) {
			r.Get("/", h.LayoutList)
			r.Post("/", h.LayoutCreate)
			r.Get("/{id}", h.LayoutGet)
			r.Put("/{id}", h.LayoutUpdate)
			r.Delete("/{id}", h.LayoutDelete)
		})
	})

	return r
}
