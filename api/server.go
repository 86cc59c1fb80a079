/*
server.go - Router and middleware configuration

MIDDLEWARE STACK:
  1. Logger:    request logging
  2. Recoverer: panic recovery (500 instead of crash)
  3. RequestID: unique ID per request
  4. CORS:      cross-origin requests for the frontend
  5. Timeout:   bounds every /api request, including time spent waiting
                for a pooled database connection

Routes are mounted per mode: the flat endpoints and the normalized
endpoints never coexist, matching the single-shape deployments this
service replaces.
*/
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/stock-api/inventory"
)

// requestTimeout bounds a request's whole store interaction; with the pool
// saturated the wait for a free connection counts against it.
const requestTimeout = 15 * time.Second

// NewRouter creates the router with all routes for the handler's mode.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/ping", h.Ping)
		r.Get("/health", h.Health)

		switch h.Mode {
		case inventory.ModeFlat:
			r.Post("/stock", h.RecordStockCount)
			r.Get("/stock", h.ListStockCounts)
		case inventory.ModeNormalized:
			r.Post("/items/seed", h.SeedItems)
			r.Get("/items", h.ListItems)
			r.Post("/counts", h.RecordCount)
			r.Get("/summary", h.Summarize)
		}
	})

	return r
}
