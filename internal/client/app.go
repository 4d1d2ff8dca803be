// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
)

const defaultRetryInterval = 30 * time.Second

var (
	errNoServices = errors.New("client services are not configured")
	errNoUI       = errors.New("client ui is not configured")
)

// UI is the display layer driven by the app.
type UI interface {
	// Run blocks until the user quits or ctx is done. It starts before the
	// session finishes opening: opened delivers the initialization outcome
	// once the remote check settles and is closed without a value when the
	// session cannot open.
	Run(ctx context.Context, opened <-chan service.OpenResult) error
}

type App struct {
	services *service.ClientServices
	ui       UI
	workers  config.Workers
	logger   *logger.Logger
}

// NewApp wires the session services to ui.
func NewApp(services *service.ClientServices, ui UI, workers config.Workers, logger *logger.Logger) (*App, error) {
	if services == nil || services.Session == nil {
		return nil, errNoServices
	}
	if ui == nil {
		return nil, errNoUI
	}

	return &App{
		services: services,
		ui:       ui,
		workers:  workers,
		logger:   logger,
	}, nil
}

// Run hands control to the UI and opens the session behind it, so the
// local dataset is on screen while the remote check is still running.
// SIGINT and SIGTERM stop the UI. The session is closed on return, which
// flushes a pending push.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		if closeErr := a.services.Session.Close(); closeErr != nil {
			a.logger.Error().Err(closeErr).Str("func", "App.Run").Msg("error closing session")
			err = errors.Join(err, closeErr)
		}
	}()

	interval := a.workers.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	a.services.RetryJob.Start(ctx, interval)
	defer a.services.RetryJob.Stop()

	opened := make(chan service.OpenResult, 1)
	openErr := make(chan error, 1)
	go func() {
		defer close(opened)

		res, err := a.services.Session.Open(ctx)
		if err != nil {
			openErr <- err
			cancel()
			return
		}
		openErr <- nil

		a.logger.Info().
			Str("func", "App.Run").
			Str("source", string(res.Source)).
			Int64("last_synced", res.LastSynced).
			AnErr("remote_err", res.RemoteErr).
			Msg("session opened")
		opened <- res
	}()

	uiErr := a.ui.Run(ctx, opened)

	// the remote check honours ctx, so Open returns promptly
	cancel()
	if err = <-openErr; err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	if uiErr != nil {
		return fmt.Errorf("ui: %w", uiErr)
	}

	return nil
}
