// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/nutrilife-sync/internal/adapter"
	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/compaction"
	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
	"github.com/MKhiriev/nutrilife-sync/internal/tracing"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const (
	DefaultGraceWindow   = 500 * time.Millisecond
	DefaultRemoteTimeout = 5 * time.Second
)

type sessionState int

const (
	sessionCreated sessionState = iota
	sessionOpening
	sessionReady
	sessionClosed
)

// DatasetSource tells where the dataset published by Open came from.
type DatasetSource string

const (
	SourceNone   DatasetSource = "none"
	SourceLocal  DatasetSource = "local"
	SourceRemote DatasetSource = "remote"
)

// OpenResult describes the outcome of the initialization protocol.
type OpenResult struct {
	Source DatasetSource
	// LastSynced is the stamp of the published snapshot, 0 for SourceNone.
	LastSynced int64
	// RemoteErr is the failure of the remote check, if any. It is
	// informational: Open still succeeds.
	RemoteErr error
}

// Session is the sync engine of one user. It owns the in-memory dataset,
// publishes it local-first, reconciles it with the remote store and pushes
// every mutation outward through a single-slot worker.
//
// A Session is safe for concurrent use.
type Session struct {
	userID        string
	local         store.LocalSnapshotStore
	remote        adapter.ServerAdapter
	compactor     Compactor
	clock         clock.Clock
	tracer        *tracing.Tracer
	grace         int64
	remoteTimeout time.Duration
	logger        *logger.Logger

	mu         sync.Mutex
	state      sessionState
	dataset    models.Dataset
	hasDataset bool
	lastSynced int64
	status     models.SyncStatus
	generation uint64
	pushedGen  uint64
	forcePush  bool

	wake       chan struct{}
	stop       chan struct{}
	workerDone chan struct{}
	events     *dispatcher
}

// NewSession builds an idle session for userID. Zero values in cfg fall
// back to DefaultGraceWindow and DefaultRemoteTimeout. tracer may be nil.
func NewSession(
	userID string,
	local store.LocalSnapshotStore,
	remote adapter.ServerAdapter,
	compactor Compactor,
	clk clock.Clock,
	cfg config.Sync,
	tracer *tracing.Tracer,
	log *logger.Logger,
) *Session {
	grace := cfg.GraceWindow
	if grace <= 0 {
		grace = DefaultGraceWindow
	}
	timeout := cfg.RemoteTimeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}

	sessionLogger := &logger.Logger{Logger: log.With().Str("user_id", userID).Logger()}

	return &Session{
		userID:        userID,
		local:         local,
		remote:        remote,
		compactor:     compactor,
		clock:         clk,
		tracer:        tracer,
		grace:         grace.Milliseconds(),
		remoteTimeout: timeout,
		logger:        sessionLogger,
		status:        models.StatusSynced,
		wake:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
		events:        newDispatcher(),
	}
}

// UserID returns the identifier the session was opened for.
func (s *Session) UserID() string {
	return s.userID
}

// Subscribe registers fn for session events and returns a function that
// removes it. Events are delivered on a dedicated goroutine in emission
// order. Once Open has started, a late subscriber first receives the
// current status and dataset (or EventNoDataset when the session is ready
// without one).
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.subscribe(fn, s.currentStateLocked()...)
}

func (s *Session) currentStateLocked() []Event {
	if s.state == sessionCreated {
		return nil
	}

	state := []Event{{Kind: EventStatus, Status: s.status}}
	switch {
	case s.hasDataset:
		state = append(state, Event{Kind: EventDataset, Dataset: s.dataset.Clone(), Status: s.status})
	case s.state == sessionReady:
		state = append(state, Event{Kind: EventNoDataset, Status: s.status})
	}
	return state
}

// Dataset returns a copy of the in-memory dataset and whether one exists.
func (s *Session) Dataset() (models.Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset.Clone(), s.hasDataset
}

// Status returns the current sync status.
func (s *Session) Status() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastSynced returns the stamp of the current in-memory dataset.
func (s *Session) LastSynced() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSynced
}

// Open runs the initialization protocol: publish the local snapshot, check
// the remote store within the remote timeout and adopt the remote snapshot
// when it is newer by more than the grace window. A failed remote check is
// reported in OpenResult, never as an error.
func (s *Session) Open(ctx context.Context) (OpenResult, error) {
	s.mu.Lock()
	switch s.state {
	case sessionClosed:
		s.mu.Unlock()
		return OpenResult{}, ErrSessionClosed
	case sessionOpening, sessionReady:
		s.mu.Unlock()
		return OpenResult{}, ErrSessionAlreadyOpen
	}
	s.state = sessionOpening
	s.mu.Unlock()

	result := OpenResult{Source: SourceNone}

	localSnap, hasLocal := s.local.Get(s.userID)
	if hasLocal {
		s.mu.Lock()
		s.dataset = localSnap.Dataset
		s.hasDataset = true
		s.lastSynced = localSnap.LastSynced
		s.publishDatasetLocked()
		s.setStatusLocked(models.StatusSyncing)
		s.mu.Unlock()

		result.Source = SourceLocal
		result.LastSynced = localSnap.LastSynced
		s.logger.Info().
			Str("func", "Session.Open").
			Int64("last_synced", localSnap.LastSynced).
			Msg("local snapshot published")
	}

	remoteSnap, hasRemote, err := s.pull(ctx)
	switch {
	case err != nil:
		result.RemoteErr = err
	case hasRemote && (!hasLocal || remoteSnap.LastSynced > localSnap.LastSynced+s.grace):
		if werr := s.local.Set(s.userID, remoteSnap); werr != nil {
			s.logger.Error().Err(werr).Str("func", "Session.Open").Msg("failed to cache remote snapshot locally")
			s.events.emit(Event{Kind: EventLocalWarning, Err: werr})
		}

		s.mu.Lock()
		s.dataset = remoteSnap.Dataset
		s.hasDataset = true
		s.lastSynced = remoteSnap.LastSynced
		s.publishDatasetLocked()
		s.mu.Unlock()

		result.Source = SourceRemote
		result.LastSynced = remoteSnap.LastSynced
		s.logger.Info().
			Str("func", "Session.Open").
			Int64("local_last_synced", localSnap.LastSynced).
			Int64("remote_last_synced", remoteSnap.LastSynced).
			Msg("remote snapshot is newer, adopted")
	case hasRemote:
		s.logger.Info().
			Str("func", "Session.Open").
			Int64("local_last_synced", localSnap.LastSynced).
			Int64("remote_last_synced", remoteSnap.LastSynced).
			Msg("local snapshot kept")
	}

	s.mu.Lock()
	if s.state == sessionClosed {
		s.mu.Unlock()
		return result, ErrSessionClosed
	}
	s.state = sessionReady
	s.setStatusLocked(models.StatusSynced)
	if !s.hasDataset {
		s.events.emit(Event{Kind: EventNoDataset, Status: s.status})
	}
	s.workerDone = make(chan struct{})
	s.mu.Unlock()

	go s.pushWorker()

	return result, nil
}

// pull reads the remote snapshot within the remote timeout. A malformed
// remote payload is reported as absent.
func (s *Session) pull(ctx context.Context) (models.Snapshot, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	ctx, span := s.tracer.StartPull(ctx, s.userID)
	snap, ok, err := s.remote.GetSnapshot(ctx, s.userID)
	tracing.End(span, err)

	if errors.Is(err, models.ErrMalformedSnapshot) {
		s.logger.Warn().Err(err).Str("func", "Session.pull").Msg("remote snapshot is malformed, treated as absent")
		return models.Snapshot{}, false, nil
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("func", "Session.pull").Msg("remote check failed, keeping local data")
		return models.Snapshot{}, false, err
	}

	return snap, ok, nil
}

// Mutate runs the mutation protocol. fn edits a copy of the dataset (a new
// empty dataset when none exists yet); when it returns an error nothing
// changes. Otherwise the result is stamped, written locally and queued for
// the remote push. The stamp is strictly newer than the one of the dataset
// it was derived from. A failed local write is reported as EventLocalWarning and
// does not fail the mutation.
func (s *Session) Mutate(fn func(d *models.Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(); err != nil {
		return err
	}

	working := models.NewDataset()
	if s.hasDataset {
		working = s.dataset.Clone()
	}
	if err := fn(&working); err != nil {
		return err
	}
	working.Normalize()

	// a snapshot derived from a server-stamped one is never older than it,
	// whatever the device clock says
	snap := models.Snapshot{Dataset: working, LastSynced: max(s.clock.Now(), s.lastSynced+1)}
	if err := s.local.Set(s.userID, snap); err != nil {
		s.logger.Error().Err(err).Str("func", "Session.Mutate").Msg("local write failed, continuing in memory")
		s.events.emit(Event{Kind: EventLocalWarning, Err: err})
	}

	s.dataset = working
	s.hasDataset = true
	s.lastSynced = snap.LastSynced
	s.generation++
	s.publishDatasetLocked()
	s.setStatusLocked(models.StatusSyncing)
	s.signalWorker()

	return nil
}

// Resync re-attempts the remote push of the current dataset.
func (s *Session) Resync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(); err != nil {
		return err
	}
	if !s.hasDataset {
		return ErrNoDataset
	}

	s.forcePush = true
	s.setStatusLocked(models.StatusSyncing)
	s.signalWorker()

	return nil
}

// Close stops the session. A pending push is flushed first; its result is
// discarded. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == sessionClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = sessionClosed
	workerDone := s.workerDone
	s.mu.Unlock()

	close(s.stop)
	if workerDone != nil {
		<-workerDone
	}
	s.events.close()

	s.logger.Debug().Str("func", "Session.Close").Msg("session closed")
	return nil
}

func (s *Session) readyLocked() error {
	switch s.state {
	case sessionReady:
		return nil
	case sessionClosed:
		return ErrSessionClosed
	default:
		return ErrSessionNotReady
	}
}

func (s *Session) signalWorker() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Session) publishDatasetLocked() {
	s.events.emit(Event{Kind: EventDataset, Dataset: s.dataset.Clone(), Status: s.status})
}

func (s *Session) setStatusLocked(status models.SyncStatus) {
	if s.status == status {
		return
	}
	s.status = status
	s.events.emit(Event{Kind: EventStatus, Status: status})
}

// pushWorker drains the single pending-write slot. Pushes run one at a
// time and always carry the latest dataset.
func (s *Session) pushWorker() {
	defer close(s.workerDone)

	for {
		select {
		case <-s.wake:
			s.pushLatest()
		case <-s.stop:
			s.pushLatest()
			return
		}
	}
}

func (s *Session) pushLatest() {
	s.mu.Lock()
	if s.generation == s.pushedGen && !s.forcePush {
		s.mu.Unlock()
		return
	}
	gen := s.generation
	s.pushedGen = gen
	s.forcePush = false
	d := s.dataset.Clone()
	s.mu.Unlock()

	payload := s.compactor.Compact(d)
	size := compaction.PayloadSize(payload)

	ctx, cancel := context.WithTimeout(context.Background(), s.remoteTimeout)
	ctx, span := s.tracer.StartPush(ctx, s.userID, gen, size)
	ok := s.remote.PutSnapshot(ctx, s.userID, payload)
	cancel()

	var pushErr error
	if !ok {
		pushErr = ErrRemotePushFailed
	}
	tracing.End(span, pushErr)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == sessionClosed {
		s.logger.Debug().Str("func", "Session.pushLatest").Bool("ok", ok).Msg("push settled after close, result discarded")
		return
	}
	if gen != s.generation || s.forcePush {
		s.logger.Debug().Str("func", "Session.pushLatest").Uint64("generation", gen).Msg("push superseded")
		return
	}

	if ok {
		s.logger.Debug().
			Str("func", "Session.pushLatest").
			Uint64("generation", gen).
			Int("payload_bytes", size).
			Msg("dataset pushed")
		s.setStatusLocked(models.StatusSynced)
		return
	}

	s.logger.Warn().Str("func", "Session.pushLatest").Uint64("generation", gen).Msg("remote push failed, data kept on device")
	s.setStatusLocked(models.StatusLocalOnly)
}
