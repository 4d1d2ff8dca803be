// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "context"

// Server defines the lifecycle contract of the transport servers managed by
// this package.
type Server interface {
	// Run starts every enabled transport and blocks until ctx is done or a
	// transport fails, then shuts all of them down.
	Run(ctx context.Context) error

	// RunServer runs until SIGINT, SIGTERM or SIGQUIT.
	RunServer()
}

// transport is one listening server.
type transport interface {
	name() string
	listen() error
	serve() error
	shutdown(ctx context.Context) error
	addr() string
}
