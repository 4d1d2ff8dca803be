// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators rejects invalid user input at the boundary, before it
// reaches the sync engine or the store of record.
//
// Validators are injected into services and called with a value and an
// optional list of field names that restricts validation to a subset of
// the value's fields.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input values.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}
