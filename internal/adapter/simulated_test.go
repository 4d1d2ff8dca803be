// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
)

func TestSimulatedServerAdapter_StampsAtWriteTime(t *testing.T) {
	clk := clock.NewManual(1_000)
	a := NewSimulatedServerAdapter(store.NewMemorySnapshotRepository(), clk, SimulatedOptions{}, logger.Nop())
	ctx := context.Background()

	_, ok, err := a.GetSnapshot(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	clk.Set(5_000)
	require.True(t, a.PutSnapshot(ctx, "u1", testDataset()))

	got, ok, err := a.GetSnapshot(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(5_000), got.LastSynced)

	list, err := a.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, a.DeleteSnapshot(ctx, "u1"))
	require.NoError(t, a.DeleteSnapshot(ctx, "u1"))
}

func TestSimulatedServerAdapter_Offline(t *testing.T) {
	a := NewSimulatedServerAdapter(store.NewMemorySnapshotRepository(), clock.NewManual(1), SimulatedOptions{}, logger.Nop())
	a.SetOffline(true)

	assert.False(t, a.PutSnapshot(context.Background(), "u1", testDataset()))
	_, _, err := a.GetSnapshot(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)

	a.SetOffline(false)
	assert.True(t, a.PutSnapshot(context.Background(), "u1", testDataset()))
}

func TestSimulatedServerAdapter_FailureRate(t *testing.T) {
	a := NewSimulatedServerAdapter(store.NewMemorySnapshotRepository(), clock.NewManual(1),
		SimulatedOptions{FailureRate: 0.5}, logger.Nop())

	a.chance = func() float64 { return 0.2 }
	assert.False(t, a.PutSnapshot(context.Background(), "u1", testDataset()))

	a.chance = func() float64 { return 0.7 }
	assert.True(t, a.PutSnapshot(context.Background(), "u1", testDataset()))
}

func TestSimulatedServerAdapter_LatencyHonoursContext(t *testing.T) {
	a := NewSimulatedServerAdapter(store.NewMemorySnapshotRepository(), clock.NewManual(1),
		SimulatedOptions{GetLatency: time.Second}, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := a.GetSnapshot(ctx, "u1")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
