// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tracing sets up OpenTelemetry tracing for the server and the
// client and provides span helpers for the sync protocol.
//
// Exporters: "none" (no-op provider), "stdout" and "otlp" (HTTP).
package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
)

// TracerName is the instrumentation scope of every span.
const TracerName = "github.com/MKhiriev/nutrilife-sync"

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Tracer wraps an OpenTelemetry tracer and the provider that owns it.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// Nop returns a tracer that records nothing.
func Nop() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}
}

// NewWithProvider wraps an existing provider. Used by tests with an
// in-memory span recorder.
func NewWithProvider(tp *sdktrace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(TracerName), provider: tp}
}

// New builds a tracer for cfg and installs it as the global provider. w
// receives stdout exporter output; nil means os.Stdout.
func New(ctx context.Context, cfg config.Tracing, version string, w io.Writer) (*Tracer, error) {
	if cfg.Exporter == "" || cfg.Exporter == ExporterNone {
		return Nop(), nil
	}

	exporter, err := newExporter(ctx, cfg, w)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetTracerProvider(provider)

	return &Tracer{
		tracer:   provider.Tracer(TracerName, trace.WithInstrumentationVersion(version)),
		provider: provider,
	}, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(rate)
}

func newExporter(ctx context.Context, cfg config.Tracing, w io.Writer) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterStdout:
		var opts []stdouttrace.Option
		if w != nil {
			opts = append(opts, stdouttrace.WithWriter(w))
		}
		return stdouttrace.New(opts...)

	case ExporterOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		return otlptracehttp.New(ctx, opts...)
	}

	return nil, fmt.Errorf("unsupported exporter type: %s", cfg.Exporter)
}

// Shutdown flushes and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Start starts a span named name.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if t == nil {
		return Nop().Start(ctx, name, opts...)
	}
	return t.tracer.Start(ctx, name, opts...)
}

// StartPull starts the span of the initial remote read of a session.
func (t *Tracer) StartPull(ctx context.Context, userID string) (context.Context, trace.Span) {
	return t.Start(ctx, "sync.pull",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
}

// StartPush starts the span of one remote write. generation identifies the
// mutation being pushed.
func (t *Tracer) StartPush(ctx context.Context, userID string, generation uint64, payloadBytes int) (context.Context, trace.Span) {
	return t.Start(ctx, "sync.push",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int64("sync.generation", int64(generation)),
			attribute.Int("sync.payload_bytes", payloadBytes),
		),
	)
}

// End ends span, marking it failed when err is not nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
