// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
)

func TestWithHashCheck(t *testing.T) {
	const body = `{"profile":{"name":"Ann"}}`
	signer := utils.NewHasher("hash-key")

	tests := []struct {
		name       string
		key        string
		digest     string
		wantStatus int
		wantNext   bool
	}{
		{
			name:       "disabled without key",
			key:        "",
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "valid digest",
			key:        "hash-key",
			digest:     signer.HashHex([]byte(body)),
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "missing digest",
			key:        "hash-key",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "digest of another body",
			key:        "hash-key",
			digest:     signer.HashHex([]byte(`{}`)),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "digest signed with another key",
			key:        "hash-key",
			digest:     utils.NewHasher("other").HashHex([]byte(body)),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "digest is not hex",
			key:        "hash-key",
			digest:     "zz",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{hasher: utils.NewHasher(tt.key), logger: logger.Nop()}

			var nextBody string
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				b, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				nextBody = string(b)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPut, "/api/snapshot", strings.NewReader(body))
			if tt.digest != "" {
				req.Header.Set(utils.HashHeader, tt.digest)
			}
			rec := httptest.NewRecorder()
			h.withHashCheck(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, called)
			if tt.wantNext {
				assert.Equal(t, body, nextBody, "body must be restored for the next handler")
			}
		})
	}
}
