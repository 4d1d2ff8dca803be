// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/handler"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/server"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
	"github.com/MKhiriev/nutrilife-sync/internal/tracing"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const shutdownTimeout = 10 * time.Second

func main() {
	printBuildInfo()

	log := logger.NewLogger("nutrilife-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildVersion
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	tracer, err := tracing.New(ctx, cfg.Tracing, cfg.App.Version, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating tracer")
	}

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	services, err := service.NewServices(storages, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, *cfg, tracer, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err = storages.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error closing storages")
	}
	if err = tracer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error shutting down tracer")
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
