package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers all assessment routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		// Training and full-portfolio scoring can take a while on large sets
		r.Use(middleware.Timeout(120 * time.Second))

		r.Get("/predict", h.HandlePredict)
		r.Post("/simulate", h.HandleSimulate)
		r.Post("/retrain", h.HandleRetrain)

		r.Get("/customers", h.HandleListCustomers)
		r.Get("/customers/{id}", h.HandleGetCustomer)

		r.Get("/runs", h.HandleListRuns)
	})
}
