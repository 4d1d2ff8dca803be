// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"fmt"

	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
)

// NewServerAdapter builds the adapter selected by cfg.Adapter.Transport.
// The simulated transport keeps its snapshots in process memory.
func NewServerAdapter(cfg config.ClientConfig, creds Credentials, log *logger.Logger) (ServerAdapter, error) {
	switch cfg.Adapter.Transport {
	case config.TransportHTTP:
		return NewHTTPServerAdapter(cfg.Adapter, creds, cfg.App.HashKey, log)
	case config.TransportGRPC:
		a, err := NewGRPCServerAdapter(cfg.Adapter, creds, log)
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.TransportSimulated:
		return NewSimulatedServerAdapter(store.NewMemorySnapshotRepository(), clock.New(), SimulatedOptions{
			GetLatency:  cfg.Adapter.SimulatedGetLatency,
			PutLatency:  cfg.Adapter.SimulatedPutLatency,
			FailureRate: cfg.Adapter.SimulatedFailureRate,
		}, log), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Adapter.Transport)
}
