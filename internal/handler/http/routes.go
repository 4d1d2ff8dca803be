// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, h.withTracing, h.withRateLimit, withGZip)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	// routes without authorization
	router.Get("/api/version/", h.getServerVersion)

	// snapshot of the calling user
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/snapshot", h.getSnapshot)
		r.With(h.withHashCheck).Put("/api/snapshot", h.putSnapshot)

		// account removal is allowed for admins and for the owner
		r.Delete("/api/admin/snapshots/{userID}", h.deleteSnapshot)
		r.With(h.adminOnly).Get("/api/admin/snapshots", h.listSnapshots)
	})

	router.NotFound(notFound)
	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
