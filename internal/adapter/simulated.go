// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// SimulatedOptions configure the artificial network of the simulated
// adapter.
type SimulatedOptions struct {
	GetLatency  time.Duration
	PutLatency  time.Duration
	FailureRate float64
}

// SimulatedServerAdapter is an in-process remote store. It behaves like a
// slow, unreliable network in front of a [store.SnapshotRepository] and
// stamps lastSynced with its own clock when it writes.
type SimulatedServerAdapter struct {
	repo  store.SnapshotRepository
	clock clock.Clock
	opts  SimulatedOptions

	mu      sync.Mutex
	offline bool
	chance  func() float64

	logger *logger.Logger
}

// NewSimulatedServerAdapter returns a simulated adapter over repo.
func NewSimulatedServerAdapter(repo store.SnapshotRepository, clk clock.Clock, opts SimulatedOptions, logger *logger.Logger) *SimulatedServerAdapter {
	return &SimulatedServerAdapter{
		repo:   repo,
		clock:  clk,
		opts:   opts,
		chance: rand.Float64,
		logger: logger,
	}
}

// SetOffline makes every call fail with ErrRemoteUnavailable until it is
// switched back.
func (s *SimulatedServerAdapter) SetOffline(offline bool) {
	s.mu.Lock()
	s.offline = offline
	s.mu.Unlock()
}

// network waits for latency and then decides whether the call goes through.
func (s *SimulatedServerAdapter) network(ctx context.Context, latency time.Duration) error {
	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrRemoteUnavailable, ctx.Err())
		case <-timer.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return fmt.Errorf("%w: offline", ErrRemoteUnavailable)
	}
	if s.opts.FailureRate > 0 && s.chance() < s.opts.FailureRate {
		return fmt.Errorf("%w: simulated failure", ErrRemoteUnavailable)
	}
	return nil
}

func (s *SimulatedServerAdapter) GetSnapshot(ctx context.Context, userID string) (models.Snapshot, bool, error) {
	if err := s.network(ctx, s.opts.GetLatency); err != nil {
		return models.Snapshot{}, false, err
	}

	snapshot, err := s.repo.GetSnapshot(ctx, userID)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return models.Snapshot{}, false, nil
	}
	if err != nil {
		return models.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (s *SimulatedServerAdapter) PutSnapshot(ctx context.Context, userID string, d models.Dataset) bool {
	log := s.logger.With().Str("func", "SimulatedServerAdapter.PutSnapshot").Str("user_id", userID).Logger()

	if err := s.network(ctx, s.opts.PutLatency); err != nil {
		log.Warn().Err(err).Msg("put snapshot failed")
		return false
	}

	info, err := s.repo.SaveSnapshot(ctx, userID, models.Snapshot{Dataset: d, LastSynced: s.clock.Now()})
	if err != nil {
		log.Warn().Err(err).Msg("put snapshot failed")
		return false
	}

	log.Debug().Int64("last_synced", info.LastSynced).Int("size_bytes", info.SizeBytes).Msg("snapshot pushed")
	return true
}

func (s *SimulatedServerAdapter) DeleteSnapshot(ctx context.Context, userID string) error {
	if err := s.network(ctx, s.opts.PutLatency); err != nil {
		return err
	}

	if err := s.repo.DeleteSnapshot(ctx, userID); err != nil && !errors.Is(err, store.ErrSnapshotNotFound) {
		return err
	}
	return nil
}

func (s *SimulatedServerAdapter) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	if err := s.network(ctx, s.opts.GetLatency); err != nil {
		return nil, err
	}
	return s.repo.ListSnapshots(ctx)
}
