// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui is the terminal display layer of the client. It renders the
// reconciled dataset published by a [service.Session] and turns typed
// commands into mutation intents.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/models"
)

var errNoSession = errors.New("client services have no session")

type TUI struct {
	services  *service.ClientServices
	clock     clock.Clock
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

func New(services *service.ClientServices, clk clock.Clock, buildInfo models.AppBuildInfo, logger *logger.Logger) (*TUI, error) {
	if services == nil || services.Session == nil {
		return nil, errNoSession
	}
	if clk == nil {
		clk = clock.New()
	}

	return &TUI{
		services:  services,
		clock:     clk,
		buildInfo: buildInfo,
		logger:    logger,
	}, nil
}

// Run shows the main screen until the user quits or ctx is done. It may
// start while the session is still opening: session events are forwarded
// from the first moment and the outcome read from opened is shown once it
// arrives.
func (t *TUI) Run(ctx context.Context, opened <-chan service.OpenResult) error {
	model := newAppModel(ctx, t.services.Session, t.services.DatasetService, t.services.TransferService, t.clock, t.buildInfo, t.logger)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := t.services.Session.Subscribe(func(e service.Event) {
		program.Send(sessionEventMsg{event: e})
	})
	defer unsubscribe()

	go func() {
		if res, ok := <-opened; ok {
			program.Send(openResultMsg{result: res})
		}
	}()

	_, err := program.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		t.logger.Info().Str("func", "TUI.Run").Msg("screen closed by context")
		return nil
	}
	return err
}
