// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const (
	testSignKey = "sign-key"
	testIssuer  = "nutrilife"
	testHashKey = "hash-key"
)

func testCredentials(role string) Credentials {
	return Credentials{
		Issuer:   testIssuer,
		SignKey:  testSignKey,
		Duration: time.Hour,
		Role:     role,
		Operator: "ops",
	}
}

func testDataset() models.Dataset {
	d := models.NewDataset()
	d.Profile = &models.Profile{Name: "Ann", Height: 170, Weight: 60, TargetCalories: 1900, SetupComplete: true}
	return d
}

func newTestHTTPAdapter(t *testing.T, h http.HandlerFunc, hashKey string) ServerAdapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	a, err := NewHTTPServerAdapter(config.Adapter{HTTPAddress: srv.URL, RequestTimeout: time.Second},
		testCredentials(models.RoleUser), hashKey, logger.Nop())
	require.NoError(t, err)
	return a
}

// subject validates the bearer token of r and returns its user id.
func subject(t *testing.T, r *http.Request) models.Token {
	t.Helper()
	raw, err := utils.ParseBearerToken(r.Header.Get("Authorization"))
	require.NoError(t, err)
	token, err := utils.ValidateAndParseJWTToken(raw, testSignKey, testIssuer)
	require.NoError(t, err)
	return token
}

// ── GetSnapshot ─────────────────────────────────────────────────────────────

func TestHTTPServerAdapter_GetSnapshot(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/snapshot", r.URL.Path)
			assert.Equal(t, "u1", subject(t, r).UserID)

			utils.WriteJSON(w, models.Snapshot{Dataset: testDataset(), LastSynced: 99}, http.StatusOK)
		}, "")

		got, ok, err := a.GetSnapshot(context.Background(), "u1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(99), got.LastSynced)
		assert.Equal(t, "Ann", got.Profile.Name)
	})

	t.Run("404 is absent", func(t *testing.T) {
		a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			utils.WriteError(w, "snapshot was not found", http.StatusNotFound)
		}, "")

		_, ok, err := a.GetSnapshot(context.Background(), "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed body", func(t *testing.T) {
		a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"profile":null}`))
		}, "")

		_, ok, err := a.GetSnapshot(context.Background(), "u1")
		assert.False(t, ok)
		assert.ErrorIs(t, err, models.ErrMalformedSnapshot)
	})

	t.Run("server error", func(t *testing.T) {
		a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			utils.WriteError(w, "db down", http.StatusInternalServerError)
		}, "")

		_, _, err := a.GetSnapshot(context.Background(), "u1")
		assert.ErrorIs(t, err, ErrRemoteUnavailable)
		assert.Contains(t, err.Error(), "db down")
	})

	t.Run("unreachable", func(t *testing.T) {
		a, err := NewHTTPServerAdapter(config.Adapter{HTTPAddress: "127.0.0.1:1", RequestTimeout: time.Second},
			testCredentials(models.RoleUser), "", logger.Nop())
		require.NoError(t, err)

		_, _, err = a.GetSnapshot(context.Background(), "u1")
		assert.ErrorIs(t, err, ErrRemoteUnavailable)
	})
}

// ── PutSnapshot ─────────────────────────────────────────────────────────────

func TestHTTPServerAdapter_PutSnapshot(t *testing.T) {
	t.Run("signed body", func(t *testing.T) {
		var received models.Dataset
		a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			assert.True(t, utils.NewHasher(testHashKey).Verify(body, r.Header.Get(utils.HashHeader)))
			require.NoError(t, json.Unmarshal(body, &received))

			utils.WriteJSON(w, models.SnapshotInfo{UserID: "u1", LastSynced: 5, SizeBytes: len(body)}, http.StatusOK)
		}, testHashKey)

		assert.True(t, a.PutSnapshot(context.Background(), "u1", testDataset()))
		assert.Equal(t, "Ann", received.Profile.Name)
	})

	t.Run("no hash header without key", func(t *testing.T) {
		a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get(utils.HashHeader))
			w.WriteHeader(http.StatusOK)
		}, "")

		assert.True(t, a.PutSnapshot(context.Background(), "u1", testDataset()))
	})

	t.Run("rejected", func(t *testing.T) {
		a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			utils.WriteError(w, "too large", http.StatusRequestEntityTooLarge)
		}, "")

		assert.False(t, a.PutSnapshot(context.Background(), "u1", testDataset()))
	})

	t.Run("timeout", func(t *testing.T) {
		a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}, "")

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.False(t, a.PutSnapshot(ctx, "u1", testDataset()))
	})

	t.Run("pushes are numbered per writer", func(t *testing.T) {
		var writers, seqs []string
		a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			writers = append(writers, r.Header.Get(utils.WriterHeader))
			seqs = append(seqs, r.Header.Get(utils.WriteSeqHeader))
			w.WriteHeader(http.StatusOK)
		}, "")

		for range 3 {
			require.True(t, a.PutSnapshot(context.Background(), "u1", testDataset()))
		}

		assert.Equal(t, []string{"1", "2", "3"}, seqs)
		require.Len(t, writers, 3)
		assert.NotEmpty(t, writers[0])
		assert.Equal(t, writers[0], writers[1])
		assert.Equal(t, writers[0], writers[2])

		other := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.NotEqual(t, writers[0], r.Header.Get(utils.WriterHeader))
			w.WriteHeader(http.StatusOK)
		}, "")
		assert.True(t, other.PutSnapshot(context.Background(), "u1", testDataset()))
	})

	t.Run("superseded", func(t *testing.T) {
		a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			utils.WriteError(w, "a newer write from the same client is already stored", http.StatusConflict)
		}, "")

		assert.False(t, a.PutSnapshot(context.Background(), "u1", testDataset()))
	})
}

// ── admin ───────────────────────────────────────────────────────────────────

func TestHTTPServerAdapter_DeleteSnapshot(t *testing.T) {
	var path string
	a := newTestHTTPAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/api/admin/snapshots/missing" {
			utils.WriteError(w, "snapshot was not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}, "")

	require.NoError(t, a.DeleteSnapshot(context.Background(), "u1"))
	assert.Equal(t, "/api/admin/snapshots/u1", path)

	assert.NoError(t, a.DeleteSnapshot(context.Background(), "missing"))
}

func TestHTTPServerAdapter_ListSnapshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := subject(t, r)
		if !token.IsAdmin() {
			utils.WriteError(w, "forbidden", http.StatusForbidden)
			return
		}
		assert.Equal(t, "ops", token.UserID)
		utils.WriteJSON(w, []models.SnapshotInfo{{UserID: "a", LastSynced: 1, SizeBytes: 10}}, http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Adapter{HTTPAddress: srv.URL, RequestTimeout: time.Second}

	admin, err := NewHTTPServerAdapter(cfg, testCredentials(models.RoleAdmin), "", logger.Nop())
	require.NoError(t, err)
	got, err := admin.ListSnapshots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.SnapshotInfo{{UserID: "a", LastSynced: 1, SizeBytes: 10}}, got)

	user, err := NewHTTPServerAdapter(cfg, testCredentials(models.RoleUser), "", logger.Nop())
	require.NoError(t, err)
	_, err = user.ListSnapshots(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "localhost:8080", want: "http://localhost:8080"},
		{in: "https://api.example.com/", want: "https://api.example.com"},
		{in: "  http://h:1  ", want: "http://h:1"},
		{in: "", wantErr: true},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		got, err := normalizeBaseURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTokenCache(t *testing.T) {
	c := newTokenCache(testCredentials(models.RoleUser))

	first, err := c.token("u1")
	require.NoError(t, err)
	second, err := c.token("u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := c.token("u2")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	bad := newTokenCache(Credentials{Issuer: testIssuer, Duration: time.Hour})
	_, err = bad.token("u1")
	assert.True(t, errors.Is(err, utils.ErrInvalidTokenParams))
}

func TestNewServerAdapter(t *testing.T) {
	cfg := config.ClientConfig{Adapter: config.Adapter{Transport: "carrier-pigeon"}}
	_, err := NewServerAdapter(cfg, testCredentials(models.RoleUser), logger.Nop())
	assert.ErrorIs(t, err, ErrUnknownTransport)

	cfg.Adapter.Transport = config.TransportSimulated
	a, err := NewServerAdapter(cfg, testCredentials(models.RoleUser), logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SimulatedServerAdapter{}, a)
}
