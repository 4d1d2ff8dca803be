// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "errors"

var (
	// ErrMalformedSnapshot is returned when a stored snapshot cannot be
	// decoded or does not have the expected shape.
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	// ErrMalformedDocument is returned when an export document cannot be
	// decoded or misses one of its required top-level fields.
	ErrMalformedDocument = errors.New("malformed export document")
)
