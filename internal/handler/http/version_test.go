// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
)

func TestGetServerVersion(t *testing.T) {
	for _, version := range []string{"1.0.0", "v2.3.4-rc.1", ""} {
		t.Run("version "+version, func(t *testing.T) {
			h := &Handler{
				services: &service.Services{AppInfoService: &fakeAppInfoService{version: version}},
				logger:   logger.Nop(),
			}

			rec := httptest.NewRecorder()
			h.getServerVersion(rec, httptest.NewRequest(http.MethodGet, "/api/version/", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
			assert.Equal(t, version, rec.Body.String())
		})
	}
}
