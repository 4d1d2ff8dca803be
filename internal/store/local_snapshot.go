// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// LocalKeyPrefix namespaces local snapshots inside the key-value store.
const LocalKeyPrefix = "nutrilife_local_v2_"

// LocalKey returns the key-value key of the user's local snapshot.
func LocalKey(userID string) string {
	return LocalKeyPrefix + userID
}

type localSnapshotStore struct {
	kv     KeyValueStore
	logger *logger.Logger
}

// NewLocalSnapshotStore stores full-fidelity snapshots in kv.
func NewLocalSnapshotStore(kv KeyValueStore, logger *logger.Logger) LocalSnapshotStore {
	return &localSnapshotStore{
		kv:     kv,
		logger: logger,
	}
}

func (l *localSnapshotStore) Get(userID string) (models.Snapshot, bool) {
	raw, ok, err := l.kv.Get(LocalKey(userID))
	if err != nil {
		l.logger.Error().Err(err).
			Str("func", "localSnapshotStore.Get").
			Str("user_id", userID).
			Msg("failed to read local snapshot")
		return models.Snapshot{}, false
	}
	if !ok {
		return models.Snapshot{}, false
	}

	snapshot, err := models.DecodeSnapshot([]byte(raw))
	if err != nil {
		l.logger.Warn().Err(err).
			Str("func", "localSnapshotStore.Get").
			Str("user_id", userID).
			Msg("local snapshot is malformed, treating as absent")
		return models.Snapshot{}, false
	}

	return snapshot, true
}

func (l *localSnapshotStore) Set(userID string, s models.Snapshot) error {
	s.Dataset = s.Dataset.Clone()
	s.Dataset.Normalize()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLocalWrite, err)
	}

	if err = l.kv.Set(LocalKey(userID), string(data)); err != nil {
		l.logger.Error().Err(err).
			Str("func", "localSnapshotStore.Set").
			Str("user_id", userID).
			Int("size_bytes", len(data)).
			Msg("failed to write local snapshot")
		return fmt.Errorf("%w: %w", ErrLocalWrite, err)
	}

	return nil
}

func (l *localSnapshotStore) Remove(userID string) error {
	if err := l.kv.Delete(LocalKey(userID)); err != nil {
		l.logger.Error().Err(err).
			Str("func", "localSnapshotStore.Remove").
			Str("user_id", userID).
			Msg("failed to remove local snapshot")
		return fmt.Errorf("%w: %w", ErrLocalWrite, err)
	}
	return nil
}
