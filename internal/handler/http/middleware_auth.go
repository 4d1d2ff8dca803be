// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// The bearer token from the "Authorization" header is validated via
// [service.AuthService.ParseToken]; on success the user id and role are
// stored in the request context with [utils.WithUser]. Every failure is
// answered with 401 Unauthorized.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Str("func", "*Handler.auth").Send()
			utils.WriteError(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Str("func", "*Handler.auth").Send()
			utils.WriteError(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		token, err := h.services.AuthService.ParseToken(r.Context(), tokenString)
		if err != nil {
			log.Err(err).Str("func", "*Handler.auth").Msg("token rejected")
			utils.WriteError(w, service.ErrTokenIsExpiredOrInvalid.Error(), http.StatusUnauthorized)
			return
		}

		role := token.Role
		if role == "" {
			role = models.RoleUser
		}

		ctx := utils.WithUser(r.Context(), token.UserID, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminOnly rejects callers without the admin role with 403 Forbidden. It
// must run after auth.
func (h *Handler) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := utils.GetRoleFromContext(r.Context()); role != models.RoleAdmin {
			logger.FromRequest(r).Warn().Str("func", "*Handler.adminOnly").Msg("admin role required")
			utils.WriteError(w, service.ErrForbidden.Error(), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
