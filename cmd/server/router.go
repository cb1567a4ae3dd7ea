package main

import (
	"net/http"

	"github.com/campforge/campforge-api/internal/api"
	apiMiddleware "github.com/campforge/campforge-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	groupHandler := api.NewGroupHandler(app.db, app.groupStore)
	activityHandler := api.NewActivityHandler(app.activityStore, app.groupStore)
	evaluationHandler := api.NewEvaluationHandler(app.evaluationService)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Group endpoints
			r.Post("/groups", groupHandler.Create)
			r.Get("/groups/{id}", groupHandler.Get)
			r.Post("/groups/{id}/members", groupHandler.AddMember)
			r.Get("/groups/{id}/activities", activityHandler.ListByGroup)

			// Activity endpoints
			r.Post("/activities", activityHandler.Create)
			r.Get("/activities/{id}", activityHandler.Get)
			r.Put("/activities/{id}", activityHandler.Update)
			r.Delete("/activities/{id}", activityHandler.Delete)
			r.Put("/activities/{id}/editor", activityHandler.AssignEditor)

			// AI evaluation endpoints
			r.Post("/activities/{id}/ai-evaluations", evaluationHandler.Request)
			r.Get("/activities/{id}/ai-evaluations", evaluationHandler.List)
			r.Get("/ai-evaluations/{id}", evaluationHandler.Get)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
