package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(middleware.RequestSize(maxRequestBodySize))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/categories", s.handleListCategories)

		r.Route("/selects", func(r chi.Router) {
			r.Get("/", s.handleListSelects)
			r.Get("/unregistered", s.handleListUnregistered)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSelect)
				r.Patch("/", s.handleUpdateSelect)
				r.Post("/option", s.handleSelectOption)
			})
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	total, enabled := s.selects.Count()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"version":         s.version,
		"selects_total":   total,
		"selects_enabled": enabled,
		"ws_clients":      s.hub.ClientCount(),
	})
}
