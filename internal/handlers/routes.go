package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes assembles the full HTTP surface. Mutating endpoints sit behind the
// admin token; everything else is public read traffic for the portal.
func (h *Handler) Routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/predict/{team1Id}/{team2Id}", h.GetMatchPrediction)
		r.Get("/predictions/upcoming", h.GetUpcomingPredictions)
		r.Get("/bracket/advancements", h.GetBracketAdvancements)
		r.Get("/model/status", h.GetModelStatus)

		r.Group(func(r chi.Router) {
			r.Use(h.AdminAuthMiddleware)
			r.Post("/bracket/advance", h.ApplyBracketAdvancements)
			r.Post("/model/reload", h.ReloadModel)
			r.Post("/ingest/map-stats", h.IngestMapStats)
		})
	})

	return r
}
