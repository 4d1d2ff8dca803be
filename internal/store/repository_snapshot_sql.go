// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// sqlSnapshotRepository is the SQL implementation of [SnapshotRepository].
// One row per user holds the whole snapshot as JSON.
type sqlSnapshotRepository struct {
	*DB
	logger *logger.Logger
}

// NewSQLSnapshotRepository constructs a [SnapshotRepository] over db. The
// query placeholders and upsert clause follow the connection's dialect.
func NewSQLSnapshotRepository(db *DB, logger *logger.Logger) SnapshotRepository {
	return &sqlSnapshotRepository{
		DB:     db,
		logger: logger,
	}
}

// GetSnapshot loads and decodes the user's snapshot. A stored payload that
// fails shape validation is returned as models.ErrMalformedSnapshot.
func (r *sqlSnapshotRepository) GetSnapshot(ctx context.Context, userID string) (models.Snapshot, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetSnapshotQuery(r.builder(), userID)
	if err != nil {
		log.Err(err).Str("func", "sqlSnapshotRepository.GetSnapshot").Msg("failed to create query")
		return models.Snapshot{}, err
	}

	var payload string
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "sqlSnapshotRepository.GetSnapshot").
			Str("user_id", userID).
			Msg("failed to scan snapshot row")
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	snapshot, err := models.DecodeSnapshot([]byte(payload))
	if err != nil {
		log.Warn().Err(err).
			Str("func", "sqlSnapshotRepository.GetSnapshot").
			Str("user_id", userID).
			Msg("stored snapshot is malformed")
		return models.Snapshot{}, err
	}

	return snapshot, nil
}

// SaveSnapshot inserts or replaces the user's snapshot.
func (r *sqlSnapshotRepository) SaveSnapshot(ctx context.Context, userID string, s models.Snapshot) (models.SnapshotInfo, error) {
	log := logger.FromContext(ctx)

	row, err := encodeSnapshotRow(userID, s)
	if err != nil {
		log.Err(err).Str("func", "sqlSnapshotRepository.SaveSnapshot").Str("user_id", userID).Msg("failed to encode snapshot")
		return models.SnapshotInfo{}, err
	}

	query, args, err := buildSaveSnapshotQuery(r.builder(), r.dialect, row, time.Now().UTC())
	if err != nil {
		log.Err(err).Str("func", "sqlSnapshotRepository.SaveSnapshot").Msg("failed to create query")
		return models.SnapshotInfo{}, err
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "sqlSnapshotRepository.SaveSnapshot").
			Str("user_id", userID).
			Int("size_bytes", row.SizeBytes).
			Msg("failed to save snapshot")
		return models.SnapshotInfo{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Debug().
		Str("func", "sqlSnapshotRepository.SaveSnapshot").
		Str("user_id", userID).
		Int64("last_synced", row.LastSynced).
		Int("size_bytes", row.SizeBytes).
		Msg("snapshot saved")

	return row.info(), nil
}

// DeleteSnapshot removes the user's snapshot.
func (r *sqlSnapshotRepository) DeleteSnapshot(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteSnapshotQuery(r.builder(), userID)
	if err != nil {
		log.Err(err).Str("func", "sqlSnapshotRepository.DeleteSnapshot").Msg("failed to create query")
		return err
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "sqlSnapshotRepository.DeleteSnapshot").
			Str("user_id", userID).
			Msg("failed to delete snapshot")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrSnapshotNotFound
	}

	return nil
}

// ListSnapshots returns a descriptor of every stored snapshot.
func (r *sqlSnapshotRepository) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListSnapshotsQuery(r.builder())
	if err != nil {
		log.Err(err).Str("func", "sqlSnapshotRepository.ListSnapshots").Msg("failed to create query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "sqlSnapshotRepository.ListSnapshots").Msg("failed to execute query for listing snapshots")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	results := make([]models.SnapshotInfo, 0, 16)
	for rows.Next() {
		var info models.SnapshotInfo
		if scanErr := rows.Scan(&info.UserID, &info.LastSynced, &info.SizeBytes); scanErr != nil {
			log.Err(scanErr).Str("func", "sqlSnapshotRepository.ListSnapshots").Msg("failed to scan snapshot row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		results = append(results, info)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "sqlSnapshotRepository.ListSnapshots").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return results, nil
}

func encodeSnapshotRow(userID string, s models.Snapshot) (snapshotRow, error) {
	s.Dataset = s.Dataset.Clone()
	s.Dataset.Normalize()
	payload, err := json.Marshal(s)
	if err != nil {
		return snapshotRow{}, fmt.Errorf("%w: %w", ErrEncodingSnapshot, err)
	}

	return snapshotRow{
		UserID:     userID,
		Payload:    string(payload),
		LastSynced: s.LastSynced,
		SizeBytes:  len(payload),
	}, nil
}

func (r snapshotRow) info() models.SnapshotInfo {
	return models.SnapshotInfo{
		UserID:     r.UserID,
		LastSynced: r.LastSynced,
		SizeBytes:  r.SizeBytes,
	}
}
