// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/handler"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
)

// shutdownTimeout bounds the graceful stop of all transports.
const shutdownTimeout = 10 * time.Second

type server struct {
	transports []transport
	ready      chan struct{}
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	s := &server{ready: make(chan struct{}), logger: logger}

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		s.transports = append(s.transports, newHTTPServer(handlers.HTTP.Init(), cfg))
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		s.transports = append(s.transports, newGRPCServer(handlers.GRPC, cfg))
	}

	if len(s.transports) == 0 {
		return nil, errNoServersAreCreated
	}

	return s, nil
}

func (s *server) RunServer() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	if err := s.Run(ctx); err != nil {
		s.logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	s.logger.Info().Msg("server Shutdown gracefully")
}

func (s *server) Run(ctx context.Context) error {
	// bind every listener before serving so a taken port fails fast
	for i, t := range s.transports {
		if err := t.listen(); err != nil {
			s.shutdownAll(s.transports[:i])
			return fmt.Errorf("%s server listen: %w", t.name(), err)
		}
	}

	errs := make(chan error, len(s.transports))
	for _, t := range s.transports {
		s.logger.Info().Str("address", t.addr()).Msgf("Launching %s server", t.name())
		go func(t transport) {
			if err := t.serve(); err != nil {
				errs <- fmt.Errorf("%s server serve: %w", t.name(), err)
				return
			}
			errs <- nil
		}(t)
	}
	close(s.ready)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
	}

	shutdownErr := s.shutdownAll(s.transports)
	return errors.Join(runErr, shutdownErr)
}

func (s *server) shutdownAll(transports []transport) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for _, t := range transports {
		s.logger.Info().Msgf("%s server Shutdown", t.name())
		if err := t.shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", t.name(), err))
		}
	}
	return errors.Join(errs...)
}

// addrs returns the bound addresses once Run has started serving.
func (s *server) addrs() []string {
	<-s.ready
	out := make([]string, 0, len(s.transports))
	for _, t := range s.transports {
		out = append(out, t.addr())
	}
	return out
}
