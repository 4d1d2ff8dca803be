// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package config provides configuration loading, merging, and validation
// facilities for the server, the client and the admin CLI.
//
// Configuration is assembled from multiple sources. A value set by a
// higher-priority source is never overwritten:
//  1. Environment variables (a .env file is loaded into the environment first)
//  2. Command-line flags
//  3. JSON, YAML or TOML config file
//  4. Built-in defaults
//
// The main entry points are [GetStructuredConfig] for the server,
// [GetClientConfig] for the client and [LoadConfig] for tools that parse
// their own flags.
package config
