// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedConfigFormat is returned for config files whose extension is
// not .json, .yaml, .yml or .toml.
var ErrUnsupportedConfigFormat = errors.New("unsupported config file format")

// fileConfig mirrors [StructuredConfig] for file sources. One set of
// snake_case keys is shared by every supported format.
type fileConfig struct {
	App struct {
		TokenSignKey  string   `json:"token_sign_key" yaml:"token_sign_key" toml:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer" yaml:"token_issuer" toml:"token_issuer"`
		TokenDuration Duration `json:"token_duration" yaml:"token_duration" toml:"token_duration"`
		HashKey       string   `json:"hash_key" yaml:"hash_key" toml:"hash_key"`
		Version       string   `json:"version" yaml:"version" toml:"version"`
	} `json:"app" yaml:"app" toml:"app"`

	Storage struct {
		DB struct {
			DSN            string `json:"dsn" yaml:"dsn" toml:"dsn"`
			ConnectRetries int    `json:"connect_retries" yaml:"connect_retries" toml:"connect_retries"`
		} `json:"db" yaml:"db" toml:"db"`
		Local struct {
			DSN        string `json:"dsn" yaml:"dsn" toml:"dsn"`
			QuotaBytes int    `json:"quota_bytes" yaml:"quota_bytes" toml:"quota_bytes"`
		} `json:"local" yaml:"local" toml:"local"`
	} `json:"storage" yaml:"storage" toml:"storage"`

	Server struct {
		HTTPAddress     string   `json:"http_address" yaml:"http_address" toml:"http_address"`
		GRPCAddress     string   `json:"grpc_address" yaml:"grpc_address" toml:"grpc_address"`
		RequestTimeout  Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
		RateLimitRPS    float64  `json:"rate_limit_rps" yaml:"rate_limit_rps" toml:"rate_limit_rps"`
		RateLimitBurst  int      `json:"rate_limit_burst" yaml:"rate_limit_burst" toml:"rate_limit_burst"`
		MaxPayloadBytes int      `json:"max_payload_bytes" yaml:"max_payload_bytes" toml:"max_payload_bytes"`
	} `json:"server" yaml:"server" toml:"server"`

	Adapter struct {
		Transport            string   `json:"transport" yaml:"transport" toml:"transport"`
		HTTPAddress          string   `json:"http_address" yaml:"http_address" toml:"http_address"`
		GRPCAddress          string   `json:"grpc_address" yaml:"grpc_address" toml:"grpc_address"`
		RequestTimeout       Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
		SimulatedGetLatency  Duration `json:"simulated_get_latency" yaml:"simulated_get_latency" toml:"simulated_get_latency"`
		SimulatedPutLatency  Duration `json:"simulated_put_latency" yaml:"simulated_put_latency" toml:"simulated_put_latency"`
		SimulatedFailureRate float64  `json:"simulated_failure_rate" yaml:"simulated_failure_rate" toml:"simulated_failure_rate"`
	} `json:"adapter" yaml:"adapter" toml:"adapter"`

	Sync struct {
		UserID             string   `json:"user_id" yaml:"user_id" toml:"user_id"`
		GraceWindow        Duration `json:"grace_window" yaml:"grace_window" toml:"grace_window"`
		RemoteTimeout      Duration `json:"remote_timeout" yaml:"remote_timeout" toml:"remote_timeout"`
		RetentionDays      int      `json:"retention_days" yaml:"retention_days" toml:"retention_days"`
		ImageRetentionDays int      `json:"image_retention_days" yaml:"image_retention_days" toml:"image_retention_days"`
	} `json:"sync" yaml:"sync" toml:"sync"`

	Workers struct {
		RetryInterval Duration `json:"retry_interval" yaml:"retry_interval" toml:"retry_interval"`
	} `json:"workers" yaml:"workers" toml:"workers"`

	Analyzer struct {
		APIKey  string   `json:"api_key" yaml:"api_key" toml:"api_key"`
		Model   string   `json:"model" yaml:"model" toml:"model"`
		Timeout Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
	} `json:"analyzer" yaml:"analyzer" toml:"analyzer"`

	Tracing struct {
		Exporter    string  `json:"exporter" yaml:"exporter" toml:"exporter"`
		Endpoint    string  `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
		SampleRate  float64 `json:"sample_rate" yaml:"sample_rate" toml:"sample_rate"`
		ServiceName string  `json:"service_name" yaml:"service_name" toml:"service_name"`
	} `json:"tracing" yaml:"tracing" toml:"tracing"`

	Client struct {
		LogPath string `json:"log_path" yaml:"log_path" toml:"log_path"`
	} `json:"client" yaml:"client" toml:"client"`
}

// parseFile decodes the config file at path, choosing the decoder by
// extension.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a config file: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedConfigFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}

	return fc.toStructured(), nil
}

func (fc *fileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenSignKey:  fc.App.TokenSignKey,
			TokenIssuer:   fc.App.TokenIssuer,
			TokenDuration: time.Duration(fc.App.TokenDuration),
			HashKey:       fc.App.HashKey,
			Version:       fc.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN:            fc.Storage.DB.DSN,
				ConnectRetries: fc.Storage.DB.ConnectRetries,
			},
			Local: Local{
				DSN:        fc.Storage.Local.DSN,
				QuotaBytes: fc.Storage.Local.QuotaBytes,
			},
		},
		Server: Server{
			HTTPAddress:     fc.Server.HTTPAddress,
			GRPCAddress:     fc.Server.GRPCAddress,
			RequestTimeout:  time.Duration(fc.Server.RequestTimeout),
			RateLimitRPS:    fc.Server.RateLimitRPS,
			RateLimitBurst:  fc.Server.RateLimitBurst,
			MaxPayloadBytes: fc.Server.MaxPayloadBytes,
		},
		Adapter: Adapter{
			Transport:            fc.Adapter.Transport,
			HTTPAddress:          fc.Adapter.HTTPAddress,
			GRPCAddress:          fc.Adapter.GRPCAddress,
			RequestTimeout:       time.Duration(fc.Adapter.RequestTimeout),
			SimulatedGetLatency:  time.Duration(fc.Adapter.SimulatedGetLatency),
			SimulatedPutLatency:  time.Duration(fc.Adapter.SimulatedPutLatency),
			SimulatedFailureRate: fc.Adapter.SimulatedFailureRate,
		},
		Sync: Sync{
			UserID:             fc.Sync.UserID,
			GraceWindow:        time.Duration(fc.Sync.GraceWindow),
			RemoteTimeout:      time.Duration(fc.Sync.RemoteTimeout),
			RetentionDays:      fc.Sync.RetentionDays,
			ImageRetentionDays: fc.Sync.ImageRetentionDays,
		},
		Workers: Workers{
			RetryInterval: time.Duration(fc.Workers.RetryInterval),
		},
		Analyzer: Analyzer{
			APIKey:  fc.Analyzer.APIKey,
			Model:   fc.Analyzer.Model,
			Timeout: time.Duration(fc.Analyzer.Timeout),
		},
		Tracing: Tracing{
			Exporter:    fc.Tracing.Exporter,
			Endpoint:    fc.Tracing.Endpoint,
			SampleRate:  fc.Tracing.SampleRate,
			ServiceName: fc.Tracing.ServiceName,
		},
		Client: Client{LogPath: fc.Client.LogPath},
	}
}

// Duration is a wrapper around time.Duration that decodes from strings like
// "1h" or "30s" in every supported file format. JSON numbers are read as
// nanoseconds.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case nil:
		return nil
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		return d.UnmarshalText([]byte(value))
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// UnmarshalText is used by the YAML and TOML decoders.
func (d *Duration) UnmarshalText(text []byte) error {
	tmp, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
