// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// Built-in defaults applied when no other source sets a value.
const (
	DefaultHTTPAddress         = "localhost:8080"
	DefaultGRPCAddress         = "localhost:9090"
	DefaultRequestTimeout      = 30 * time.Second
	DefaultRateLimitRPS        = 20
	DefaultRateLimitBurst      = 40
	DefaultMaxPayloadBytes     = 5 << 20
	DefaultTransport           = TransportHTTP
	DefaultAdapterTimeout      = 5 * time.Second
	DefaultSimulatedGetLatency = 500 * time.Millisecond
	DefaultSimulatedPutLatency = 100 * time.Millisecond
	DefaultGraceWindow         = 500 * time.Millisecond
	DefaultRemoteTimeout       = 5 * time.Second
	DefaultRetentionDays       = 365
	DefaultImageRetentionDays  = 7
	DefaultRetryInterval       = time.Minute
	DefaultAnalyzerModel       = "claude-sonnet-4-5"
	DefaultAnalyzerTimeout     = 30 * time.Second
	DefaultTracingExporter     = "none"
	DefaultTracingSampleRate   = 1.0
	DefaultServiceName         = "nutrilife"
	DefaultTokenIssuer         = "nutrilife"
	DefaultTokenDuration       = 24 * time.Hour
	DefaultLocalDSN            = "nutrilife.db"
	DefaultClientLogPath       = "nutrilife-client.log"
	DefaultDBConnectRetries    = 5
)

// Supported client transports.
const (
	TransportHTTP      = "http"
	TransportGRPC      = "grpc"
	TransportSimulated = "simulated"
)

func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   DefaultTokenIssuer,
			TokenDuration: DefaultTokenDuration,
		},
		Storage: Storage{
			DB:    DB{ConnectRetries: DefaultDBConnectRetries},
			Local: Local{DSN: DefaultLocalDSN},
		},
		Server: Server{
			HTTPAddress:     DefaultHTTPAddress,
			GRPCAddress:     DefaultGRPCAddress,
			RequestTimeout:  DefaultRequestTimeout,
			RateLimitRPS:    DefaultRateLimitRPS,
			RateLimitBurst:  DefaultRateLimitBurst,
			MaxPayloadBytes: DefaultMaxPayloadBytes,
		},
		Adapter: Adapter{
			Transport:           DefaultTransport,
			HTTPAddress:         "http://" + DefaultHTTPAddress,
			GRPCAddress:         DefaultGRPCAddress,
			RequestTimeout:      DefaultAdapterTimeout,
			SimulatedGetLatency: DefaultSimulatedGetLatency,
			SimulatedPutLatency: DefaultSimulatedPutLatency,
		},
		Sync: Sync{
			GraceWindow:        DefaultGraceWindow,
			RemoteTimeout:      DefaultRemoteTimeout,
			RetentionDays:      DefaultRetentionDays,
			ImageRetentionDays: DefaultImageRetentionDays,
		},
		Workers: Workers{RetryInterval: DefaultRetryInterval},
		Analyzer: Analyzer{
			Model:   DefaultAnalyzerModel,
			Timeout: DefaultAnalyzerTimeout,
		},
		Tracing: Tracing{
			Exporter:    DefaultTracingExporter,
			SampleRate:  DefaultTracingSampleRate,
			ServiceName: DefaultServiceName,
		},
		Client: Client{LogPath: DefaultClientLogPath},
	}
}
