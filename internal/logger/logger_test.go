// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, data []byte) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	return entry
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("server", &buf)

	l.Debug().Msg("snapshot saved")

	entry := decodeEntry(t, buf.Bytes())
	assert.Equal(t, "server", entry["role"])
	assert.Equal(t, "snapshot saved", entry["message"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "func")
	assert.Equal(t, "func", zerolog.CallerFieldName)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("server")
	require.NotNil(t, l)

	l.Logger = l.Output(&buf)
	l.Info().Msg("listening")

	assert.Equal(t, "server", decodeEntry(t, buf.Bytes())["role"])
}

func TestNewClientLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	l := NewClientLogger("client", path)

	l.Info().Msg("session opened")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	entry := decodeEntry(t, data)
	assert.Equal(t, "client", entry["role"])
	assert.Equal(t, "session opened", entry["message"])
}

func TestNop(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)

	l.Error().Msg("dropped")

	assert.Empty(t, buf.String())
}

func TestGetChildLogger(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithWriter("client", &buf)

	child := parent.GetChildLogger()
	require.NotSame(t, parent, child)

	child.Logger = child.With().Str("user_id", "u1").Logger()
	child.Info().Msg("child")

	entry := decodeEntry(t, buf.Bytes())
	assert.Equal(t, "client", entry["role"])
	assert.Equal(t, "u1", entry["user_id"])

	buf.Reset()
	parent.Info().Msg("parent")
	assert.NotContains(t, decodeEntry(t, buf.Bytes()), "user_id")
}

func TestWithLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantWarn  bool
	}{
		{name: "warn", level: "warn", wantDebug: false, wantWarn: true},
		{name: "error", level: "error", wantDebug: false, wantWarn: false},
		{name: "debug", level: "debug", wantDebug: true, wantWarn: true},
		{name: "unknown keeps parent level", level: "loud", wantDebug: true, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter("nutrictl", &buf).WithLevel(tt.level)

			l.Debug().Msg("debug")
			assert.Equal(t, tt.wantDebug, buf.Len() > 0)

			buf.Reset()
			l.Warn().Msg("warn")
			assert.Equal(t, tt.wantWarn, buf.Len() > 0)
		})
	}
}

func TestFromContext(t *testing.T) {
	require.NotNil(t, FromContext(context.Background()))

	var buf bytes.Buffer
	zl := zerolog.New(&buf).With().Str("trace_id", "abc").Logger()

	FromContext(zl.WithContext(context.Background())).Info().Msg("scoped")

	assert.Equal(t, "abc", decodeEntry(t, buf.Bytes())["trace_id"])
}

func TestFromRequest(t *testing.T) {
	require.NotNil(t, FromRequest(httptest.NewRequest(http.MethodGet, "/", nil)))

	var buf bytes.Buffer
	zl := zerolog.New(&buf).With().Str("trace_id", "def").Logger()
	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/u1", nil)
	req = req.WithContext(zl.WithContext(req.Context()))

	FromRequest(req).Info().Msg("scoped")

	assert.Equal(t, "def", decodeEntry(t, buf.Bytes())["trace_id"])
}
