// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/internal/tracing"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
)

type Handler struct {
	services *service.Services
	hasher   *utils.Hasher
	limiter  *clientRateLimiter
	tracer   *tracing.Tracer

	requestTimeout  time.Duration
	maxPayloadBytes int

	logger *logger.Logger
}

// NewHandler builds the HTTP handler. Rate limiting is enabled when
// cfg.Server.RateLimitRPS is positive; request bodies are checked against
// the HashSHA256 header when cfg.App.HashKey is set. tracer may be nil.
func NewHandler(services *service.Services, cfg config.StructuredConfig, tracer *tracing.Tracer, logger *logger.Logger) *Handler {
	h := &Handler{
		services:        services,
		hasher:          utils.NewHasher(cfg.App.HashKey),
		tracer:          tracer,
		requestTimeout:  cfg.Server.RequestTimeout,
		maxPayloadBytes: cfg.Server.MaxPayloadBytes,
		logger:          logger,
	}
	if cfg.Server.RateLimitRPS > 0 {
		h.limiter = newClientRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	}

	logger.Info().
		Bool("hashing", h.hasher.Enabled()).
		Bool("rate_limit", h.limiter != nil).
		Msg("http handler created")
	return h
}
