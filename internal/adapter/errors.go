// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	// ErrRemoteUnavailable covers network failures, timeouts and 5xx
	// responses: the remote store could not be reached or could not serve
	// the request.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("client unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrSuperseded is returned when the server already holds a later push
	// of this client.
	ErrSuperseded = errors.New("push superseded by a later one")

	// ErrUnknownTransport is returned by [NewServerAdapter] for an
	// unsupported transport name.
	ErrUnknownTransport = errors.New("unknown adapter transport")
)
