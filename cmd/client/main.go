// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/nutrilife-sync/internal/adapter"
	"github.com/MKhiriev/nutrilife-sync/internal/analyzer"
	"github.com/MKhiriev/nutrilife-sync/internal/client"
	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
	"github.com/MKhiriev/nutrilife-sync/internal/tracing"
	"github.com/MKhiriev/nutrilife-sync/internal/tui"
	"github.com/MKhiriev/nutrilife-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("nutrilife-client").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewClientLogger("nutrilife-client", cfg.LogPath)

	tracer, err := tracing.New(context.Background(), cfg.Tracing, buildVersion, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("create tracer")
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	serverAdapter, err := adapter.NewServerAdapter(*cfg, adapter.UserCredentials(cfg.App), log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	localStorage, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer func() { _ = localStorage.Close() }()

	clk := clock.New()
	services := service.NewClientServices(
		cfg.Sync.UserID,
		localStorage.LocalSnapshotStore,
		serverAdapter,
		analyzer.New(cfg.Analyzer, log),
		clk,
		*cfg,
		tracer,
		log,
	)

	ui, err := tui.New(services, clk, models.NewAppBuildInfo(buildVersion, buildDate, buildCommit), log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ui")
	}

	app, err := client.NewApp(services, ui, cfg.Workers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Error().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
