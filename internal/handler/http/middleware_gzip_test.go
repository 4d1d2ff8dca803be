// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func gunzip(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer zr.Close()
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(out)
}

// echoHandler answers with the request body prefixed by "echo:".
func echoHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = w.Write(append([]byte("echo:"), body...))
	})
}

func TestWithGZip(t *testing.T) {
	snapshot := []byte(`{"profile":{"name":"Ann"},"logs":[],"weight_history":[]}`)

	tests := []struct {
		name            string
		acceptEncoding  string
		contentEncoding string
		body            []byte
		gzipBody        bool
		wantStatus      int
		wantGzipped     bool
		wantBody        string
	}{
		{
			name:        "plain clients get plain responses",
			body:        snapshot,
			wantStatus:  http.StatusOK,
			wantGzipped: false,
			wantBody:    "echo:" + string(snapshot),
		},
		{
			name:           "accept-encoding list with quality values",
			acceptEncoding: "br;q=1.0, gzip;q=0.8",
			body:           snapshot,
			wantStatus:     http.StatusOK,
			wantGzipped:    true,
			wantBody:       "echo:" + string(snapshot),
		},
		{
			name:            "decompresses gzip request bodies",
			contentEncoding: "gzip",
			body:            snapshot,
			gzipBody:        true,
			wantStatus:      http.StatusOK,
			wantBody:        "echo:" + string(snapshot),
		},
		{
			name:            "both directions",
			acceptEncoding:  "gzip",
			contentEncoding: "gzip",
			body:            snapshot,
			gzipBody:        true,
			wantStatus:      http.StatusCreated,
			wantGzipped:     true,
			wantBody:        "echo:" + string(snapshot),
		},
		{
			name:            "broken gzip body",
			contentEncoding: "gzip",
			body:            []byte("plain text"),
			wantStatus:      http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			if tt.gzipBody {
				body = gzipBytes(t, body)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/snapshot", bytes.NewReader(body))
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			if tt.contentEncoding != "" {
				req.Header.Set("Content-Encoding", tt.contentEncoding)
			}

			status := tt.wantStatus
			if status == http.StatusBadRequest {
				status = http.StatusOK
			}
			rec := httptest.NewRecorder()
			withGZip(echoHandler(status)).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody == "" {
				return
			}
			if tt.wantGzipped {
				assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
				assert.Equal(t, tt.wantBody, gunzip(t, rec.Body.Bytes()))
				return
			}
			assert.Empty(t, rec.Header().Get("Content-Encoding"))
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestWithGZip_ImplicitStatusIsCompressed(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("1.0.0 ", 100)))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/version/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	withGZip(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Less(t, rec.Body.Len(), 600)
	assert.Equal(t, strings.Repeat("1.0.0 ", 100), gunzip(t, rec.Body.Bytes()))
}

func TestWithGZip_NoContentStaysBodyless(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/snapshots/u1", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	withGZip(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Zero(t, rec.Body.Len())
}

func TestWithGZip_ConcurrentRequests(t *testing.T) {
	mw := withGZip(echoHandler(http.StatusOK))

	const n = 16
	payloads := make([]string, n)
	bodies := make([][]byte, n)
	for i := range payloads {
		payloads[i] = strings.Repeat(string(rune('a'+i)), 256)
		bodies[i] = gzipBytes(t, []byte(payloads[i]))
	}

	results := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPut, "/api/snapshot", bytes.NewReader(bodies[i]))
			req.Header.Set("Content-Encoding", "gzip")
			req.Header.Set("Accept-Encoding", "gzip")
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			results[i] = rec.Body.Bytes()
		}(i)
	}
	wg.Wait()

	for i := range results {
		assert.Equal(t, "echo:"+payloads[i], gunzip(t, results[i]))
	}
}

func TestWrappedReadCloser_Close(t *testing.T) {
	closed := false
	w := &wrappedReadCloser{Reader: strings.NewReader(""), OnClose: func() { closed = true }}

	assert.NoError(t, w.Close())
	assert.True(t, closed)

	assert.NoError(t, (&wrappedReadCloser{Reader: strings.NewReader("")}).Close())
}
