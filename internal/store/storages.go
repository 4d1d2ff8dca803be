// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
)

// Storages groups the server-side repositories together with the function
// that releases their connection.
type Storages struct {
	SnapshotRepository SnapshotRepository

	closer func(ctx context.Context) error
}

// Close releases the underlying connection. It is safe to call on storages
// that hold none.
func (s *Storages) Close(ctx context.Context) error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}

// Backend names returned by [BackendFor].
const (
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongodb"
	BackendMemory   = "memory"
)

// BackendFor maps a server DSN to the backend serving it.
func BackendFor(dsn string) (string, error) {
	switch {
	case dsn == "" || dsn == "memory":
		return BackendMemory, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return BackendPostgres, nil
	case strings.HasPrefix(dsn, "mysql://"):
		return BackendMySQL, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return BackendSQLite, nil
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return BackendMongo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDSN, dsn)
}

// NewStorages connects the store of record selected by cfg.DSN and applies
// its migrations.
func NewStorages(ctx context.Context, cfg config.DB, log *logger.Logger) (*Storages, error) {
	backend, err := BackendFor(cfg.DSN)
	if err != nil {
		return nil, err
	}
	log.Info().Str("func", "NewStorages").Str("backend", backend).Msg("creating new storages...")

	switch backend {
	case BackendMemory:
		return &Storages{SnapshotRepository: NewMemorySnapshotRepository()}, nil

	case BackendMongo:
		client, db, err := NewConnectMongo(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("mongodb connection error: %w", err)
		}
		return &Storages{
			SnapshotRepository: NewMongoSnapshotRepository(db.Collection(snapshotsCollection), log),
			closer:             client.Disconnect,
		}, nil
	}

	var db *DB
	switch backend {
	case BackendPostgres:
		db, err = NewConnectPostgres(ctx, cfg, log)
	case BackendMySQL:
		db, err = NewConnectMySQL(ctx, cfg, log)
	case BackendSQLite:
		db, err = NewConnectSQLite(ctx, strings.TrimPrefix(cfg.DSN, "sqlite://"), log)
	}
	if err != nil {
		return nil, fmt.Errorf("%s connection error: %w", backend, err)
	}

	if err = db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		SnapshotRepository: NewSQLSnapshotRepository(db, log),
		closer:             func(context.Context) error { return db.Close() },
	}, nil
}
