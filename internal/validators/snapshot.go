// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/nutrilife-sync/models"
)

// Field names understood by SnapshotValidator.
const (
	FieldUserID    = "user_id"
	FieldSizeBytes = "size_bytes"
	FieldDataset   = "dataset"
)

// SnapshotValidator implements [Validator] for writes to the store of
// record. It accepts [models.SnapshotInfo] (owner and encoded size) and
// [models.Snapshot] (dataset shape).
type SnapshotValidator struct {
	maxPayloadBytes int
}

// NewSnapshotValidator returns a validator that rejects payloads larger than
// maxPayloadBytes. A non-positive limit disables the size check.
func NewSnapshotValidator(maxPayloadBytes int) Validator {
	return &SnapshotValidator{maxPayloadBytes: maxPayloadBytes}
}

func (v *SnapshotValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.SnapshotInfo:
		return v.validateInfo(ctx, value, fields...)
	case *models.SnapshotInfo:
		return v.validateInfo(ctx, *value, fields...)
	case models.Snapshot:
		return v.validateSnapshot(value)
	case *models.Snapshot:
		return v.validateSnapshot(*value)
	default:
		return ErrUnsupportedType
	}
}

func (v *SnapshotValidator) validateInfo(_ context.Context, info models.SnapshotInfo, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUserID, FieldSizeBytes}
	}

	for _, f := range fields {
		switch f {
		case FieldUserID:
			if info.UserID == "" {
				return ErrInvalidUserID
			}
		case FieldSizeBytes:
			if v.maxPayloadBytes > 0 && info.SizeBytes > v.maxPayloadBytes {
				return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, info.SizeBytes, v.maxPayloadBytes)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SnapshotValidator) validateSnapshot(s models.Snapshot) error {
	if err := s.Dataset.Validate(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrMalformedSnapshot, err)
	}
	return nil
}
