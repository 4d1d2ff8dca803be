// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger wraps zerolog for the nutrilife-sync server, client and
// admin CLI. Every entry is JSON with "role", "time" and "func" fields;
// request handlers obtain their scoped logger with FromRequest.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger embeds zerolog.Logger, so the full zerolog API is available on it.
type Logger struct {
	zerolog.Logger
}

// NewLogger returns the server logger: JSON on stdout, every level enabled.
func NewLogger(role string) *Logger {
	return newLogger(role, os.Stdout)
}

// Client log rotation limits.
const (
	clientLogMaxSizeMB  = 10
	clientLogMaxBackups = 3
	clientLogMaxAgeDays = 28
)

// NewClientLogger constructs a *Logger for the interactive client. The
// terminal UI owns stdout, so entries go to a size-rotated file at path.
// An empty path places "nutrilife-client.log" next to the executable.
func NewClientLogger(role, path string) *Logger {
	if path == "" {
		execPath, _ := os.Executable()
		path = filepath.Join(filepath.Dir(execPath), "nutrilife-client.log")
	}

	return newLogger(role, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    clientLogMaxSizeMB,
		MaxBackups: clientLogMaxBackups,
		MaxAge:     clientLogMaxAgeDays,
		Compress:   true,
	})
}

// NewWithWriter constructs a *Logger like [NewLogger] that writes to w.
func NewWithWriter(role string, w io.Writer) *Logger {
	return newLogger(role, w)
}

func newLogger(role string, w io.Writer) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	logger := zerolog.New(w).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// Nop returns a *Logger that discards everything.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a copy of l that can be enriched independently.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// WithLevel returns a copy of l that drops entries below level. An unknown
// level name leaves the copy at the level of l.
func (l *Logger) WithLevel(level string) *Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return l.GetChildLogger()
	}
	return &Logger{l.Level(parsed)}
}

// FromRequest returns the logger the logging middleware attached to r.
func FromRequest(r *http.Request) *Logger {
	return &Logger{*log.Ctx(r.Context())}
}

// FromContext returns the logger attached to ctx, or the zerolog default
// logger when none is.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
