// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
)

// validate checks that the merged [StructuredConfig] can start the server.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: empty database DSN", ErrInvalidStorageConfigs)
	}

	if cfg.App.TokenSignKey == "" {
		return fmt.Errorf("%w: empty token sign key", ErrInvalidAppConfigs)
	}

	if cfg.App.TokenDuration <= 0 {
		return fmt.Errorf("%w: non-positive token duration", ErrInvalidAppConfigs)
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.GRPCAddress == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidServerConfigs)
	}

	if cfg.Server.RequestTimeout <= 0 || cfg.Server.MaxPayloadBytes <= 0 {
		return fmt.Errorf("%w: non-positive timeout or payload limit", ErrInvalidServerConfigs)
	}

	return cfg.Tracing.validate()
}

func (t Tracing) validate() error {
	switch t.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("%w: unknown exporter %q", ErrInvalidTracingConfigs, t.Exporter)
	}

	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidTracingConfigs, t.SampleRate)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.Local.DSN == "" {
		return fmt.Errorf("%w: empty local DSN", ErrInvalidStorageConfigs)
	}

	switch cfg.Adapter.Transport {
	case TransportHTTP:
		if cfg.Adapter.HTTPAddress == "" {
			return fmt.Errorf("%w: empty http address", ErrInvalidAdapterConfigs)
		}
		if cfg.App.TokenSignKey == "" {
			return fmt.Errorf("%w: empty token sign key", ErrInvalidAppConfigs)
		}
	case TransportGRPC:
		if cfg.Adapter.GRPCAddress == "" {
			return fmt.Errorf("%w: empty grpc address", ErrInvalidAdapterConfigs)
		}
		if cfg.App.TokenSignKey == "" {
			return fmt.Errorf("%w: empty token sign key", ErrInvalidAppConfigs)
		}
	case TransportSimulated:
		if r := cfg.Adapter.SimulatedFailureRate; r < 0 || r > 1 {
			return fmt.Errorf("%w: failure rate %v", ErrInvalidAdapterConfigs, r)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidAdapterConfigs, cfg.Adapter.Transport)
	}

	if cfg.Adapter.RequestTimeout <= 0 {
		return fmt.Errorf("%w: non-positive request timeout", ErrInvalidAdapterConfigs)
	}

	if cfg.Sync.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidSyncConfigs)
	}

	if cfg.Sync.RetentionDays <= 0 || cfg.Sync.ImageRetentionDays <= 0 {
		return fmt.Errorf("%w: non-positive retention", ErrInvalidSyncConfigs)
	}

	if cfg.Workers.RetryInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return cfg.Tracing.validate()
}
