// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the REST transport of the remote store of record.
//
// Every request passes through trace id, logging, tracing, rate limiting and
// compression middleware before it reaches a route. Snapshot routes require
// a bearer token; administrative routes additionally require the admin role.
package http
