// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"

	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
)

type Services struct {
	AuthService     AuthService
	SnapshotService SnapshotService
	AppInfoService  AppInfoService
}

func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, fmt.Errorf("app info service: %w", err)
	}

	snapshots := NewSnapshotValidationService(cfg.Server.MaxPayloadBytes).
		Wrap(NewSnapshotService(storages.SnapshotRepository, clock.New(), logger))

	return &Services{
		AuthService:     NewAuthService(cfg.App, logger),
		SnapshotService: snapshots,
		AppInfoService:  appInfo,
	}, nil
}
