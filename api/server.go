/*
server.go - Router assembly

PURPOSE:
  Mounts all handlers on a chi router with the standard middleware stack.
  Login sits outside the session gate; everything else under /api is
  behind it.
*/
package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the full HTTP surface for the dashboard API.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.Cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			r.Post("/logout", h.Logout)

			r.Get("/attendance", h.GetAttendance)
			r.Post("/attendance", h.MarkAttendance)

			r.Get("/schedule", h.GetSchedule)

			r.Get("/transactions", h.ListTransactions)
			r.Post("/transactions", h.AddTransaction)
			r.Delete("/transactions/{id}", h.DeleteTransaction)
			r.Get("/transactions/export", h.ExportTransactions)

			r.Get("/summary", h.GetSummary)

			r.Get("/payroll/unpaid", h.GetUnpaid)
		})
	})

	return r
}

func logf(format string, args ...any) {
	log.Printf(format, args...)
}
