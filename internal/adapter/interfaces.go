// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter implements the client side of the remote store: the
// Remote Store Adapter of the sync engine.
//
// [ServerAdapter] hides the transport. Three implementations ship with the
// package: HTTP/REST over resty ([NewHTTPServerAdapter]), gRPC with the JSON
// codec ([NewGRPCServerAdapter]) and an in-process simulation with latency
// and failure injection ([NewSimulatedServerAdapter]).
//
// Transport failures are mapped to the sentinel values in errors.go so that
// callers can use [errors.Is] regardless of the transport.
package adapter

import (
	"context"

	"github.com/MKhiriev/nutrilife-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter is the transport-agnostic remote store.
type ServerAdapter interface {
	// GetSnapshot fetches the user's remote snapshot. The second result is
	// false when the remote store holds none. A payload that fails shape
	// validation is returned as an error wrapping models.ErrMalformedSnapshot.
	GetSnapshot(ctx context.Context, userID string) (models.Snapshot, bool, error)

	// PutSnapshot persists d as the user's remote snapshot; the remote side
	// stamps lastSynced at write time. Failures are reported through the
	// result flag and logged, never returned.
	PutSnapshot(ctx context.Context, userID string, d models.Dataset) bool

	// DeleteSnapshot removes the user's remote snapshot. Deleting a missing
	// snapshot is not an error.
	DeleteSnapshot(ctx context.Context, userID string) error

	// ListSnapshots returns descriptors of every remote snapshot. It
	// requires administrative credentials.
	ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error)
}
