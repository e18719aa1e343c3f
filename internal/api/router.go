package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(apiHandler *APIHandler, limiter Limiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	if limiter != nil {
		r.Use(RateLimit(limiter))
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// All API routes are under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", apiHandler.LoginHandler)

		// Chat is public but personalizes when a valid token is present.
		r.With(apiHandler.OptionalAuthMiddleware).Post("/chat", apiHandler.ChatHandler)
		r.With(apiHandler.OptionalAuthMiddleware).Get("/analytics", apiHandler.AnalyticsHandler)

		// Student-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.AuthMiddleware)

			r.Get("/chat/history", apiHandler.ChatHistoryHandler)
			r.Post("/chat/feedback", apiHandler.FeedbackHandler)

			r.Get("/student/profile", apiHandler.ProfileHandler)
			r.Get("/student/attendance", apiHandler.AttendanceHandler)
			r.Get("/student/schedule", apiHandler.ScheduleHandler)
			r.Get("/student/fees", apiHandler.FeesHandler)
			r.Post("/student/appointment", apiHandler.AppointmentHandler)
			r.Post("/student/apply-leave", apiHandler.ApplyLeaveHandler)

			r.Post("/upload", apiHandler.UploadHandler)
		})
	})

	return r
}
