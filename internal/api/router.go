package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/subtitle-forge/backend/internal/api/handlers"
	"github.com/subtitle-forge/backend/internal/api/middleware"
	"github.com/subtitle-forge/backend/internal/auth"
	"github.com/subtitle-forge/backend/internal/config"
	"github.com/subtitle-forge/backend/internal/db"
	"github.com/subtitle-forge/backend/internal/job"
	"github.com/subtitle-forge/backend/internal/service"
)

func NewRouter(database *db.Database, jwtService *auth.JWTService, cfg *config.Config, jobQueue *job.JobQueue, svc *service.Service) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	// Handlers
	authHandler := handlers.NewAuthHandler(database, jwtService)
	subtitleHandler := handlers.NewSubtitleHandler(cfg.UploadPath, jobQueue, svc)
	jobHandler := handlers.NewJobHandler(jobQueue)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		// Auth (public, rate limited)
		r.With(loginLimiter.Handler, middleware.MaxBodySize(4*1024)).
			Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))

			// Auth
			r.Get("/auth/me", authHandler.Me)

			// Subtitles
			r.Get("/subtitle/engines", subtitleHandler.Engines)
			r.Post("/subtitle/translate", subtitleHandler.Translate)
			r.Post("/subtitle/correct", subtitleHandler.Correct)
			r.Post("/subtitle/timesync", subtitleHandler.TimeSync)
			r.Get("/subtitle/result/{id}", subtitleHandler.Download)

			// Jobs
			r.Get("/jobs", jobHandler.ListJobs)
			r.Get("/jobs/{id}", jobHandler.GetJob)
			r.With(middleware.RequireRole("admin")).Delete("/jobs/{id}", jobHandler.CancelJob)
		})
	})

	return r
}
