// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store implements both persistence sides of the sync engine.
//
// On the device: [KeyValueStore] backends (SQLite, JSON file, memory) and
// [LocalSnapshotStore], which keeps one full-fidelity snapshot per user
// under a namespaced key.
//
// On the server: [SnapshotRepository], the store of record, backed by
// PostgreSQL, MySQL, SQLite, MongoDB or memory depending on the DSN.
package store

import (
	"context"

	"github.com/MKhiriev/nutrilife-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// KeyValueStore is the on-device persistence collaborator: synchronous
// get/set/delete by string key. A failed Set leaves the previous value
// in place.
type KeyValueStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Close releases the underlying resources.
	Close() error
}

// LocalSnapshotStore is the Local Store Adapter of the sync engine.
type LocalSnapshotStore interface {
	// Get returns the user's snapshot. Unreadable or malformed data is
	// reported as absent.
	Get(userID string) (models.Snapshot, bool)
	// Set persists s for the user. Failures wrap ErrLocalWrite.
	Set(userID string, s models.Snapshot) error
	// Remove deletes the user's snapshot.
	Remove(userID string) error
}

// SnapshotRepository is the server-side store of record.
type SnapshotRepository interface {
	// GetSnapshot returns ErrSnapshotNotFound when the user has no snapshot.
	GetSnapshot(ctx context.Context, userID string) (models.Snapshot, error)
	// SaveSnapshot inserts or replaces the user's snapshot.
	SaveSnapshot(ctx context.Context, userID string, s models.Snapshot) (models.SnapshotInfo, error)
	// DeleteSnapshot returns ErrSnapshotNotFound when nothing was deleted.
	DeleteSnapshot(ctx context.Context, userID string) error
	// ListSnapshots returns descriptors of every stored snapshot ordered by
	// user id.
	ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error)
}
