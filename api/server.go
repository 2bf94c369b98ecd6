/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack and routes of the read-only
  report API started by `sportbonus serve`.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin GETs for dashboards

ROUTES:
  GET /healthz                     Sink reachability
  GET /metrics                     Prometheus exposition
  GET /api/report                  Every row of the report table
  GET /api/report/summary          Aggregate figures
  GET /api/report/{employeeID}     One row

SECURITY NOTE:
  No authentication. The API exposes salaries; bind it to an internal
  address only.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/sportbonus/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured. allowedOrigins
// feeds the CORS policy; empty means same-origin only.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api/report", func(r chi.Router) {
		r.Get("/", h.ListReport)
		r.Get("/summary", h.GetSummary)
		r.Get("/{employeeID}", h.GetEmployee)
	})

	return r
}
