// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/nutrilife-sync/models"
)

// SnapshotService is the server side of the remote store.
type SnapshotService interface {
	// GetSnapshot returns store.ErrSnapshotNotFound when the user has none.
	GetSnapshot(ctx context.Context, userID string) (models.Snapshot, error)
	// SaveSnapshot stamps d with the server clock and stores it.
	SaveSnapshot(ctx context.Context, userID string, d models.Dataset) (models.SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, userID string) error
	ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error)
}

type AuthService interface {
	CreateToken(ctx context.Context, userID, role string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// SnapshotServiceWrapper defines middleware composition for SnapshotService.
// Implementations wrap an existing SnapshotService to add behavior such as
// validation.
type SnapshotServiceWrapper interface {
	Wrap(SnapshotService) SnapshotService
}
