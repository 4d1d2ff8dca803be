// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository and store methods to signal
// well-known failure conditions. Callers should use [errors.Is] to match
// against these values.
var (
	// ErrSnapshotNotFound is returned when the store of record holds no
	// snapshot for the requested user.
	ErrSnapshotNotFound = errors.New("snapshot was not found")

	// ErrLocalWrite wraps every failure to persist a local snapshot. The
	// previous local value is left untouched.
	ErrLocalWrite = errors.New("local snapshot write failed")

	// ErrQuotaExceeded is returned by the in-memory key-value store when a
	// write would exceed its byte quota.
	ErrQuotaExceeded = errors.New("local storage quota exceeded")

	// ErrUnsupportedDSN is returned when a DSN scheme does not map to any
	// storage backend.
	ErrUnsupportedDSN = errors.New("unsupported storage DSN")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a driver-level operation fails before any domain
// logic can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan snapshot row")

	// ErrScanningRows is returned when iterating a multi-row result fails.
	ErrScanningRows = errors.New("failed to scan snapshot rows")

	// ErrEncodingSnapshot is returned when a snapshot cannot be serialized.
	ErrEncodingSnapshot = errors.New("failed to encode snapshot")
)
