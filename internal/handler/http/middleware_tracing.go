// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MKhiriev/nutrilife-sync/internal/tracing"
)

// withTracing wraps every request in a server span. The span is named after
// the matched route pattern once routing is done.
func (h *Handler) withTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), "http.request",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)

		tw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(tw, r.WithContext(ctx))

		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(attribute.String("http.route", pattern))
			}
		}
		span.SetAttributes(attribute.Int("http.response.status_code", tw.status))

		var err error
		if tw.status >= http.StatusInternalServerError {
			err = fmt.Errorf("status %d", tw.status)
		}
		tracing.End(span, err)
	})
}
