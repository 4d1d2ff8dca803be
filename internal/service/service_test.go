// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/nutrilife-sync/internal/adapter"
	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/compaction"
	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const (
	testUserID = "user-1"
	// 2026-10-19T10:00:00Z
	testNow int64 = 1792404000000
)

func testProfile() models.Profile {
	return models.Profile{
		Name:           "Ann",
		Height:         170,
		Weight:         62,
		TargetCalories: 2000,
		MacroRatios:    models.MacroRatios{Protein: 30, Carbs: 40, Fat: 30},
		SetupComplete:  true,
	}
}

func testDataset() models.Dataset {
	p := testProfile()
	d := models.NewDataset()
	d.Profile = &p
	d.WeightHistory = []models.WeightSample{{ID: "w1", Date: "2026-10-01", Timestamp: testNow - 18*24*3600*1000, Weight: 62}}
	return d
}

func snapshotOf(d models.Dataset, lastSynced int64) models.Snapshot {
	return models.Snapshot{Dataset: d, LastSynced: lastSynced}
}

// fakeRemote is an in-process remote store with failure and gating hooks.
type fakeRemote struct {
	mu       sync.Mutex
	clock    clock.Clock
	snap     *models.Snapshot
	getErr   error
	getBlock bool
	failPuts bool
	putGate  chan struct{}
	puts     []models.Dataset
	deletes  []string
}

func newFakeRemote(clk clock.Clock) *fakeRemote {
	return &fakeRemote{clock: clk}
}

func (f *fakeRemote) GetSnapshot(ctx context.Context, _ string) (models.Snapshot, bool, error) {
	f.mu.Lock()
	block, err, snap := f.getBlock, f.getErr, f.snap
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return models.Snapshot{}, false, ctx.Err()
	}
	if err != nil {
		return models.Snapshot{}, false, err
	}
	if snap == nil {
		return models.Snapshot{}, false, nil
	}
	return models.Snapshot{Dataset: snap.Dataset.Clone(), LastSynced: snap.LastSynced}, true, nil
}

// PutSnapshot waits on putGate once when it is set.
func (f *fakeRemote) PutSnapshot(ctx context.Context, _ string, d models.Dataset) bool {
	f.mu.Lock()
	gate := f.putGate
	f.putGate = nil
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return false
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPuts {
		return false
	}
	f.puts = append(f.puts, d.Clone())
	f.snap = &models.Snapshot{Dataset: d.Clone(), LastSynced: f.clock.Now()}
	return true
}

func (f *fakeRemote) DeleteSnapshot(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, userID)
	f.snap = nil
	return nil
}

func (f *fakeRemote) ListSnapshots(context.Context) ([]models.SnapshotInfo, error) {
	return nil, nil
}

func (f *fakeRemote) stored() (models.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snap == nil {
		return models.Snapshot{}, false
	}
	return *f.snap, true
}

func (f *fakeRemote) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}

func (f *fakeRemote) set(fn func(f *fakeRemote)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// eventLog collects session events.
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) add(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

func (l *eventLog) has(kind EventKind) bool {
	for _, e := range l.snapshot() {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

type sessionFixture struct {
	session *Session
	local   store.LocalSnapshotStore
	kv      store.KeyValueStore
	remote  adapter.ServerAdapter
	clock   *clock.Manual
	events  *eventLog
}

func newSessionFixture(t *testing.T, remote adapter.ServerAdapter, clk *clock.Manual, kv store.KeyValueStore) *sessionFixture {
	t.Helper()

	if kv == nil {
		kv = store.NewMemoryKV(0)
	}
	local := store.NewLocalSnapshotStore(kv, logger.Nop())
	compactor := compaction.NewCompactor(compaction.Policy{Location: time.UTC}, clk)

	cfg := config.Sync{GraceWindow: 500 * time.Millisecond, RemoteTimeout: 200 * time.Millisecond}
	s := NewSession(testUserID, local, remote, compactor, clk, cfg, nil, logger.Nop())

	events := &eventLog{}
	s.Subscribe(events.add)
	t.Cleanup(func() { _ = s.Close() })

	return &sessionFixture{session: s, local: local, kv: kv, remote: remote, clock: clk, events: events}
}

func openSession(t *testing.T, fx *sessionFixture) OpenResult {
	t.Helper()
	res, err := fx.session.Open(context.Background())
	require.NoError(t, err)
	return res
}

func waitStatus(t *testing.T, s *Session, want models.SyncStatus) {
	t.Helper()
	require.Eventually(t, func() bool { return s.Status() == want }, 2*time.Second, 5*time.Millisecond,
		"status stayed %s, want %s", s.Status(), want)
}
