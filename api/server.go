/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/bills/*          Master bill list
  /api/pay-cycle        Pay-cycle settings
  /api/cycles/*         Projections
  /api/periods/*        Interest-free billing periods
  /api/admin/*          Admin operations
  /api/export|import    Backup files
  /api/scenarios/*      Demo data sets
  /                     Endpoint index page

SECURITY NOTE:
  No authentication middleware. The server is meant to run on localhost
  for a single user.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/planner/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Bill routes
		r.Route("/bills", func(r chi.Router) {
			r.Get("/", h.ListBills)
			r.Post("/", h.CreateBill)
			r.Get("/{id}", h.GetBill)
			r.Put("/{id}", h.UpdateBill)
			r.Delete("/{id}", h.DeleteBill)
		})

		// Pay cycle routes
		r.Get("/pay-cycle", h.GetPayCycle)
		r.Put("/pay-cycle", h.SetPayCycle)
		r.Route("/cycles", func(r chi.Router) {
			r.Get("/", h.GetCycles)
			r.Post("/preview", h.PreviewCycles)
		})

		// Interest-free routes
		r.Route("/periods", func(r chi.Router) {
			r.Get("/", h.ListPeriods)
			r.Post("/", h.CreatePeriod)
			r.Get("/{id}", h.GetPeriod)
			r.Put("/{id}", h.UpdatePeriod)
			r.Delete("/{id}", h.DeletePeriod)
			r.Post("/{id}/transactions", h.AddTransaction)
			r.Delete("/{id}/transactions/{txId}", h.DeleteTransaction)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/rollover", h.TriggerRollover)
		})

		// Transfer routes
		r.Get("/export", h.Export)
		r.Post("/import", h.Import)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	// Endpoint index
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(indexPage))
	})

	return r
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Finance Tracker</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Finance Tracker API</h1>
<ul>
<li><a href="/api/bills">/api/bills</a> - List bills</li>
<li><a href="/api/pay-cycle">/api/pay-cycle</a> - Pay-cycle settings</li>
<li><a href="/api/cycles">/api/cycles</a> - Upcoming pay cycles</li>
<li><a href="/api/periods">/api/periods</a> - Interest-free billing periods</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo data sets</li>
<li><a href="/api/export">/api/export</a> - Download a backup</li>
</ul>
</body>
</html>`
