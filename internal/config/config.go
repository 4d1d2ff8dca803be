// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// server, the client and the admin CLI. It is populated by merging values
// from a .env file, environment variables, command-line flags, an optional
// JSON/YAML/TOML file and built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token and integrity keys and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds the server store of record and the on-device store.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network, timeout and request-limiting settings of the
	// HTTP and gRPC servers.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the client-side remote store transport settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds the sync engine and compaction parameters.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds configuration for background jobs.
	Workers Workers `envPrefix:"WORKERS_"`

	// Analyzer holds the image-analysis collaborator settings.
	Analyzer Analyzer `envPrefix:"ANALYZER_"`

	// Tracing holds OpenTelemetry exporter settings.
	Tracing Tracing `envPrefix:"TRACING_"`

	// Client holds settings that only make sense for the interactive client.
	Client Client `envPrefix:"CLIENT_"`

	// FilePath is the optional path to a configuration file. The format is
	// chosen by extension: .json, .yaml/.yml or .toml.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	FilePath string `env:"CONFIG"`

	// DotEnvPath is the .env file loaded into the process environment before
	// environment variables are read. Defaults to ".env".
	DotEnvPath string `env:"DOTENV"`
}

// App holds application-level configuration values that control tokens,
// request integrity and versioning.
type App struct {
	// TokenSignKey is the secret key used to sign and verify JWT tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued JWT token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long a JWT token remains valid.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// HashKey is the HMAC key used for the HashSHA256 request header.
	// Integrity checks are disabled when empty.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is exposed via the /api/version/ endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for all storage backends.
type Storage struct {
	// DB is the server store of record.
	DB DB `envPrefix:"DB_"`

	// Local is the on-device key-value store used by the client.
	Local Local `envPrefix:"LOCAL_"`
}

// DB holds connection settings for the server store of record.
type DB struct {
	// DSN selects the backend by scheme: postgres://, mysql://, mongodb://
	// or "memory".
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`

	// ConnectRetries is how many times a retryable connection failure is
	// retried at startup.
	// Env: STORAGE_DB_CONNECT_RETRIES
	ConnectRetries int `env:"CONNECT_RETRIES"`
}

// Local holds settings of the on-device store.
type Local struct {
	// DSN is a SQLite file path, a "file://" JSON file, or "memory".
	// Env: STORAGE_LOCAL_DSN
	DSN string `env:"DSN"`

	// QuotaBytes limits the in-memory store; zero means unlimited.
	// Env: STORAGE_LOCAL_QUOTA_BYTES
	QuotaBytes int `env:"QUOTA_BYTES"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address of the HTTP server ("host:port").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the TCP address of the gRPC server ("host:port").
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RateLimitRPS is the steady per-client request rate; a negative value
	// disables rate limiting.
	// Env: SERVER_RATE_LIMIT_RPS
	RateLimitRPS float64 `env:"RATE_LIMIT_RPS"`

	// RateLimitBurst is the per-client burst size.
	// Env: SERVER_RATE_LIMIT_BURST
	RateLimitBurst int `env:"RATE_LIMIT_BURST"`

	// MaxPayloadBytes rejects snapshot writes larger than this.
	// Env: SERVER_MAX_PAYLOAD_BYTES
	MaxPayloadBytes int `env:"MAX_PAYLOAD_BYTES"`
}

// Adapter holds client transport settings for the remote store.
type Adapter struct {
	// Transport is "http", "grpc" or "simulated".
	// Env: ADAPTER_TRANSPORT
	Transport string `env:"TRANSPORT"`

	// HTTPAddress is the base URL of the HTTP API.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the gRPC server address.
	// Env: ADAPTER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout bounds each outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// SimulatedGetLatency is the artificial delay of a simulated read.
	// Env: ADAPTER_SIMULATED_GET_LATENCY
	SimulatedGetLatency time.Duration `env:"SIMULATED_GET_LATENCY"`

	// SimulatedPutLatency is the artificial delay of a simulated write.
	// Env: ADAPTER_SIMULATED_PUT_LATENCY
	SimulatedPutLatency time.Duration `env:"SIMULATED_PUT_LATENCY"`

	// SimulatedFailureRate is the probability (0..1) that a simulated call
	// fails.
	// Env: ADAPTER_SIMULATED_FAILURE_RATE
	SimulatedFailureRate float64 `env:"SIMULATED_FAILURE_RATE"`
}

// Sync holds the sync engine parameters.
type Sync struct {
	// UserID is the stable identifier supplied by the authentication
	// collaborator.
	// Env: SYNC_USER_ID
	UserID string `env:"USER_ID"`

	// GraceWindow is the tolerance before a remote snapshot is considered
	// newer than the local one.
	// Env: SYNC_GRACE_WINDOW
	GraceWindow time.Duration `env:"GRACE_WINDOW"`

	// RemoteTimeout bounds every remote read and write of the engine.
	// Env: SYNC_REMOTE_TIMEOUT
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT"`

	// RetentionDays is how many days of daily logs reach the remote store.
	// Env: SYNC_RETENTION_DAYS
	RetentionDays int `env:"RETENTION_DAYS"`

	// ImageRetentionDays is the age after which meal photos are stripped
	// from the remote payload.
	// Env: SYNC_IMAGE_RETENTION_DAYS
	ImageRetentionDays int `env:"IMAGE_RETENTION_DAYS"`
}

// Workers holds configuration for background jobs.
type Workers struct {
	// RetryInterval is how often a failed remote write is re-attempted
	// while the session is local-only.
	// Env: WORKERS_RETRY_INTERVAL
	RetryInterval time.Duration `env:"RETRY_INTERVAL"`
}

// Analyzer holds the image-analysis settings.
type Analyzer struct {
	// APIKey enables the Anthropic analyzer; analysis is disabled when empty.
	// Env: ANALYZER_API_KEY
	APIKey string `env:"API_KEY"`

	// Model is the model identifier used for analysis.
	// Env: ANALYZER_MODEL
	Model string `env:"MODEL"`

	// Timeout bounds one analysis call.
	// Env: ANALYZER_TIMEOUT
	Timeout time.Duration `env:"TIMEOUT"`
}

// Tracing holds OpenTelemetry settings.
type Tracing struct {
	// Exporter is "none", "stdout" or "otlp".
	// Env: TRACING_EXPORTER
	Exporter string `env:"EXPORTER"`

	// Endpoint is the OTLP collector endpoint.
	// Env: TRACING_ENDPOINT
	Endpoint string `env:"ENDPOINT"`

	// SampleRate is the ratio of sampled traces (0..1).
	// Env: TRACING_SAMPLE_RATE
	SampleRate float64 `env:"SAMPLE_RATE"`

	// ServiceName is the service.name resource attribute.
	// Env: TRACING_SERVICE_NAME
	ServiceName string `env:"SERVICE_NAME"`
}

// Client holds settings of the interactive client.
type Client struct {
	// LogPath is the rotating log file of the client. The TUI owns stdout.
	// Env: CLIENT_LOG_PATH
	LogPath string `env:"LOG_PATH"`
}

// GetStructuredConfig loads, merges, and validates the server configuration
// from all available sources. Precedence, highest first:
//  1. Environment variables (including those loaded from .env)
//  2. Command-line flags
//  3. Configuration file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig() (*StructuredConfig, error) {
	cfg, err := newConfigBuilder().
		withDotEnv().
		withEnv().
		withFlags().
		withFile().
		withDefaults().
		build()
	if err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

// LoadConfig builds a configuration without parsing command-line flags.
// It is used by tools that own their own flag set. path may be empty.
func LoadConfig(path string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDotEnv().
		withEnv().
		withPath(path).
		withFile().
		withDefaults().
		build()
}
