// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
	"github.com/MKhiriev/nutrilife-sync/models"
)

type snapshotService struct {
	repository store.SnapshotRepository
	clock      clock.Clock
	writes     *userLocks

	logger *logger.Logger
}

func NewSnapshotService(repository store.SnapshotRepository, clk clock.Clock, logger *logger.Logger) SnapshotService {
	return &snapshotService{
		repository: repository,
		clock:      clk,
		writes:     newUserLocks(),
		logger:     logger,
	}
}

func (s *snapshotService) GetSnapshot(ctx context.Context, userID string) (models.Snapshot, error) {
	snap, err := s.repository.GetSnapshot(ctx, userID)
	if err != nil {
		return models.Snapshot{}, err
	}
	snap.Tag = nil
	return snap, nil
}

// SaveSnapshot stamps lastSynced at write time with the server clock, so
// every stored snapshot carries the time it reached the store of record.
//
// A write tagged in ctx (see [utils.WithWriteTag]) is rejected with
// ErrStaleWrite when the stored snapshot came from a later push of the same
// writer. Writes of one user are checked and stored one at a time.
func (s *snapshotService) SaveSnapshot(ctx context.Context, userID string, d models.Dataset) (models.SnapshotInfo, error) {
	snap := models.Snapshot{Dataset: d.Clone()}
	snap.Dataset.Normalize()

	if tag, ok := utils.GetWriteTagFromContext(ctx); ok {
		unlock := s.writes.lock(userID)
		defer unlock()

		if err := s.checkWriteOrder(ctx, userID, tag); err != nil {
			return models.SnapshotInfo{}, err
		}
		snap.Tag = &tag
	}
	snap.LastSynced = s.clock.Now()

	info, err := s.repository.SaveSnapshot(ctx, userID, snap)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "snapshotService.SaveSnapshot").Str("user_id", userID).Msg("saving snapshot failed")
		return models.SnapshotInfo{}, fmt.Errorf("save snapshot: %w", err)
	}

	return info, nil
}

func (s *snapshotService) checkWriteOrder(ctx context.Context, userID string, tag models.WriteTag) error {
	stored, err := s.repository.GetSnapshot(ctx, userID)
	if errors.Is(err, store.ErrSnapshotNotFound) || errors.Is(err, models.ErrMalformedSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if !tag.Supersedes(stored.Tag) {
		logger.FromContext(ctx).Warn().
			Str("func", "snapshotService.SaveSnapshot").
			Str("user_id", userID).
			Str("writer", tag.Writer).
			Uint64("seq", tag.Seq).
			Uint64("stored_seq", stored.Tag.Seq).
			Msg("stale write rejected")
		return ErrStaleWrite
	}
	return nil
}

func (s *snapshotService) DeleteSnapshot(ctx context.Context, userID string) error {
	return s.repository.DeleteSnapshot(ctx, userID)
}

func (s *snapshotService) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	return s.repository.ListSnapshots(ctx)
}

// userLocks hands out one mutex per user id. Entries are dropped once no
// caller holds or waits for them.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

func (u *userLocks) lock(userID string) (unlock func()) {
	u.mu.Lock()
	l, ok := u.locks[userID]
	if !ok {
		l = &userLock{}
		u.locks[userID] = l
	}
	l.refs++
	u.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		u.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(u.locks, userID)
		}
		u.mu.Unlock()
	}
}
