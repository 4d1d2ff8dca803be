// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/nutrilife-sync/internal/compaction"
	"github.com/MKhiriev/nutrilife-sync/internal/validators"
	"github.com/MKhiriev/nutrilife-sync/models"
)

type SnapshotValidationService struct {
	inner     SnapshotService
	validator validators.Validator
}

// NewSnapshotValidationService rejects requests without a user id and
// writes whose encoded dataset exceeds maxPayloadBytes.
func NewSnapshotValidationService(maxPayloadBytes int) SnapshotServiceWrapper {
	return &SnapshotValidationService{
		validator: validators.NewSnapshotValidator(maxPayloadBytes),
	}
}

func (v *SnapshotValidationService) GetSnapshot(ctx context.Context, userID string) (models.Snapshot, error) {
	if err := v.validateUserID(ctx, userID); err != nil {
		return models.Snapshot{}, err
	}
	return v.inner.GetSnapshot(ctx, userID)
}

func (v *SnapshotValidationService) SaveSnapshot(ctx context.Context, userID string, d models.Dataset) (models.SnapshotInfo, error) {
	info := models.SnapshotInfo{UserID: userID, SizeBytes: compaction.PayloadSize(d)}
	if err := v.validator.Validate(ctx, info); err != nil {
		return models.SnapshotInfo{}, fmt.Errorf("error during snapshot validation before saving: %w", err)
	}
	if err := v.validator.Validate(ctx, models.Snapshot{Dataset: d}); err != nil {
		return models.SnapshotInfo{}, fmt.Errorf("error during snapshot validation before saving: %w", err)
	}

	return v.inner.SaveSnapshot(ctx, userID, d)
}

func (v *SnapshotValidationService) DeleteSnapshot(ctx context.Context, userID string) error {
	if err := v.validateUserID(ctx, userID); err != nil {
		return err
	}
	return v.inner.DeleteSnapshot(ctx, userID)
}

func (v *SnapshotValidationService) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	return v.inner.ListSnapshots(ctx)
}

func (v *SnapshotValidationService) Wrap(wrapped SnapshotService) SnapshotService {
	v.inner = wrapped
	return v
}

func (v *SnapshotValidationService) validateUserID(ctx context.Context, userID string) error {
	if err := v.validator.Validate(ctx, models.SnapshotInfo{UserID: userID}, validators.FieldUserID); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationNoUserID, err)
	}
	return nil
}
