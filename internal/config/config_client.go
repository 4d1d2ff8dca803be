// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// TokenSignKey signs the bearer tokens presented to the server.
	TokenSignKey string
	// TokenIssuer is the "iss" claim of those tokens.
	TokenIssuer string
	// TokenDuration is the lifetime of a minted token.
	TokenDuration time.Duration
	// HashKey is the HMAC key used by the client for payload integrity checks.
	HashKey string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// Local holds the on-device store settings.
	Local Local
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App      ClientApp
	Adapter  Adapter
	Storage  ClientStorage
	Sync     Sync
	Workers  Workers
	Analyzer Analyzer
	Tracing  Tracing
	// LogPath is the rotating log file of the client.
	LogPath string
}

// GetClientConfig builds and validates a client-specific config view from
// the merged structured configuration. Server-only settings are not
// validated.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withDotEnv().
		withEnv().
		withFlags().
		withFile().
		withDefaults().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps the fields relevant to the client runtime.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			TokenSignKey:  cfg.App.TokenSignKey,
			TokenIssuer:   cfg.App.TokenIssuer,
			TokenDuration: cfg.App.TokenDuration,
			HashKey:       cfg.App.HashKey,
		},
		Adapter:  cfg.Adapter,
		Storage:  ClientStorage{Local: cfg.Storage.Local},
		Sync:     cfg.Sync,
		Workers:  cfg.Workers,
		Analyzer: cfg.Analyzer,
		Tracing:  cfg.Tracing,
		LogPath:  cfg.Client.LogPath,
	}
}
