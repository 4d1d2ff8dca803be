// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
	"github.com/MKhiriev/nutrilife-sync/internal/validators"
	"github.com/MKhiriev/nutrilife-sync/models"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrValidationNoUserID:      http.StatusBadRequest,
	service.ErrVersionIsNotSpecified:   http.StatusBadRequest,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrForbidden:               http.StatusForbidden,
	service.ErrStaleWrite:              http.StatusConflict,

	validators.ErrInvalidUserID:   http.StatusBadRequest,
	validators.ErrPayloadTooLarge: http.StatusRequestEntityTooLarge,
	models.ErrMalformedSnapshot:   http.StatusBadRequest,

	store.ErrSnapshotNotFound:   http.StatusNotFound,
	store.ErrEncodingSnapshot:   http.StatusInternalServerError,
	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
