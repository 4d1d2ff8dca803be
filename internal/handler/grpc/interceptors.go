// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/rpc"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/internal/tracing"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// traceIDKey is the metadata key of the caller-supplied trace id.
const traceIDKey = "x-trace-id"

func (h *Handler) recoverInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Str("func", "Handler.recoverInterceptor").
				Str("method", info.FullMethod).
				Interface("panic", r).
				Msg("handler panicked")
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return next(ctx, req)
}

// loggingInterceptor attaches a trace-scoped logger to the context and
// writes one access log line per call.
func (h *Handler) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	traceID := firstMetadata(ctx, traceIDKey)
	if traceID == "" {
		traceID = uuid.NewString()
	}

	l := h.logger.GetChildLogger()
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", traceID)
	})
	ctx = l.WithContext(ctx)

	start := time.Now()
	resp, err := next(ctx, req)

	l.Info().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Dur("duration", time.Since(start)).
		Send()

	return resp, err
}

func (h *Handler) tracingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	ctx, span := h.tracer.Start(ctx, info.FullMethod,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("rpc.system", "grpc")),
	)

	resp, err := next(ctx, req)

	code := status.Code(err)
	span.SetAttributes(attribute.String("rpc.grpc.status_code", code.String()))
	if code == codes.Internal || code == codes.Unavailable || code == codes.Unknown {
		tracing.End(span, err)
	} else {
		tracing.End(span, nil)
	}

	return resp, err
}

// authInterceptor validates the bearer token from the authorization
// metadata and stores the user id and role in the context.
func (h *Handler) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	log := logger.FromContext(ctx)

	header := firstMetadata(ctx, rpc.AuthorizationKey)
	if header == "" {
		log.Err(errMissingMetadata).Str("func", "Handler.authInterceptor").Str("method", info.FullMethod).Send()
		return nil, status.Error(codes.Unauthenticated, errMissingMetadata.Error())
	}

	tokenString, err := utils.ParseBearerToken(header)
	if err != nil {
		log.Err(err).Str("func", "Handler.authInterceptor").Send()
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	token, err := h.services.AuthService.ParseToken(ctx, tokenString)
	if err != nil {
		log.Err(err).Str("func", "Handler.authInterceptor").Msg("token rejected")
		return nil, status.Error(codes.Unauthenticated, service.ErrTokenIsExpiredOrInvalid.Error())
	}

	role := token.Role
	if role == "" {
		role = models.RoleUser
	}

	return next(utils.WithUser(ctx, token.UserID, role), req)
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
