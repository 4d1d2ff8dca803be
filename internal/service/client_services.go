// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/adapter"
	"github.com/MKhiriev/nutrilife-sync/internal/analyzer"
	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/compaction"
	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
	"github.com/MKhiriev/nutrilife-sync/internal/tracing"
)

// ClientServices is the session-scoped service set of the interactive
// client. Session must be opened before the other services are used.
type ClientServices struct {
	Session         *Session
	DatasetService  ClientDatasetService
	TransferService ClientTransferService
	AccountService  ClientAccountService
	RetryJob        ClientRetryJob
}

func NewClientServices(
	userID string,
	localStore store.LocalSnapshotStore,
	serverAdapter adapter.ServerAdapter,
	an analyzer.Analyzer,
	clk clock.Clock,
	cfg config.ClientConfig,
	tracer *tracing.Tracer,
	logger *logger.Logger,
) *ClientServices {
	compactor := compaction.NewCompactor(compaction.Policy{
		RetentionDays:      cfg.Sync.RetentionDays,
		ImageRetentionDays: cfg.Sync.ImageRetentionDays,
		Location:           time.Local,
	}, clk)

	session := NewSession(userID, localStore, serverAdapter, compactor, clk, cfg.Sync, tracer, logger)

	return &ClientServices{
		Session:         session,
		DatasetService:  NewClientDatasetService(session, an, clk, time.Local, logger),
		TransferService: NewClientTransferService(session, clk, logger),
		AccountService:  NewClientAccountService(localStore, serverAdapter, logger),
		RetryJob:        NewClientRetryJob(session, logger),
	}
}
