/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zerolog request logging (middleware.go)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /health                                  Liveness
  /api/companies/*                         Tenants and settings
  /api/companies/{companyID}/members       Team members
  /api/companies/{companyID}/allocations   Allocations + duplicate cleanup
  /api/companies/{companyID}/annual-leave  Annual leave
  /api/companies/{companyID}/holidays      Office holidays
  /api/companies/{companyID}/other-leave   Other leave
  /api/companies/{companyID}/workload      Weekly workload breakdown
  /api/scenarios/*                         Demo data

SECURITY NOTE:
  No authentication middleware. Tenancy is path-scoped only; put the
  service behind an authenticating gateway.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(Logger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/companies", func(r chi.Router) {
			r.Get("/", h.ListCompanies)
			r.Post("/", h.CreateCompany)

			r.Route("/{companyID}", func(r chi.Router) {
				r.Get("/settings", h.GetSettings)
				r.Put("/settings", h.UpdateSettings)

				r.Get("/offices", h.ListOffices)
				r.Post("/offices", h.CreateOffice)

				r.Get("/members", h.ListMembers)
				r.Post("/members", h.CreateMember)

				r.Get("/allocations", h.ListAllocations)
				r.Post("/allocations", h.CreateAllocation)
				r.Post("/allocations/cleanup", h.CleanupAllocations)

				r.Post("/annual-leave", h.CreateAnnualLeave)

				r.Get("/holidays", h.ListHolidays)
				r.Post("/holidays", h.CreateHoliday)
				r.Delete("/holidays/{id}", h.DeleteHoliday)

				r.Post("/other-leave", h.CreateOtherLeave)

				r.Get("/workload", h.GetWorkload)
			})
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "staffing-engine"})
}
