// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/MKhiriev/nutrilife-sync/models"
)

// memorySnapshotRepository keeps encoded snapshots in a map. It backs the
// "memory" DSN and the simulated remote adapter.
type memorySnapshotRepository struct {
	mu   sync.RWMutex
	rows map[string]snapshotRow
}

// NewMemorySnapshotRepository returns an empty in-process [SnapshotRepository].
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{rows: make(map[string]snapshotRow)}
}

func (r *memorySnapshotRepository) GetSnapshot(ctx context.Context, userID string) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}

	r.mu.RLock()
	row, ok := r.rows[userID]
	r.mu.RUnlock()
	if !ok {
		return models.Snapshot{}, ErrSnapshotNotFound
	}

	return models.DecodeSnapshot([]byte(row.Payload))
}

func (r *memorySnapshotRepository) SaveSnapshot(ctx context.Context, userID string, s models.Snapshot) (models.SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return models.SnapshotInfo{}, err
	}

	row, err := encodeSnapshotRow(userID, s)
	if err != nil {
		return models.SnapshotInfo{}, err
	}

	r.mu.Lock()
	r.rows[userID] = row
	r.mu.Unlock()

	return row.info(), nil
}

func (r *memorySnapshotRepository) DeleteSnapshot(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[userID]; !ok {
		return ErrSnapshotNotFound
	}
	delete(r.rows, userID)
	return nil
}

func (r *memorySnapshotRepository) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	results := make([]models.SnapshotInfo, 0, len(r.rows))
	for _, row := range r.rows {
		results = append(results, row.info())
	}
	r.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool { return results[i].UserID < results[j].UserID })
	return results, nil
}
