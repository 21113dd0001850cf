// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP route tree. Routes are organized into
// public reads, authenticated writes, and admin-only moderation, each
// with the matching middleware stack.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/auth"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
)

// New creates and returns the configured chi router with all middleware
// and route groups wired up.
func New(
	tokens *auth.Tokens,
	limiter *middleware.RateLimiter,
	authHandlers *handlers.Auth,
	posts *handlers.Posts,
	categories *handlers.Categories,
	comments *handlers.Comments,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check stays outside auth and rate limiting.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(middleware.Authenticate(tokens))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandlers.Register)
			r.Post("/login", authHandlers.Login)
			r.With(middleware.RequireAuth).Get("/me", authHandlers.Me)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", posts.List)
			r.Get("/featured", posts.Featured)
			r.Get("/search", posts.Search)
			r.With(middleware.RequireAuth).Post("/", posts.Create)

			// Fixed segments above win over the id-or-slug catch-all.
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", posts.Get)
				r.With(middleware.RequireAuth).Put("/", posts.Update)
				r.With(middleware.RequireAuth).Delete("/", posts.Delete)
				r.With(middleware.RequireAuth).Post("/like", posts.Like)

				r.Get("/comments", comments.ListByPost)
				r.Get("/comments/stats", comments.Stats)
				r.With(middleware.RequireAuth).Post("/comments", comments.Create)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.Get("/with-counts", categories.WithCounts)
			r.Get("/{id}", categories.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth, middleware.RequireAdmin)
				r.Post("/", categories.Create)
				r.Put("/{id}", categories.Update)
				r.Delete("/{id}", categories.Delete)
			})
		})

		r.Route("/comments/{id}", func(r chi.Router) {
			r.Get("/replies", comments.Replies)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Put("/", comments.Update)
				r.Delete("/", comments.Delete)
				r.Post("/like", comments.Like)
				r.Post("/report", comments.Report)
			})

			r.With(middleware.RequireAuth, middleware.RequireAdmin).
				Put("/approve", comments.Approve)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
