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

// ClientStorages groups the on-device stores used by the client.
type ClientStorages struct {
	// KeyValueStore is the raw on-device persistence.
	KeyValueStore KeyValueStore
	// LocalSnapshotStore keeps one snapshot per user on top of KeyValueStore.
	LocalSnapshotStore LocalSnapshotStore
}

// Close releases the key-value store.
func (c *ClientStorages) Close() error {
	return c.KeyValueStore.Close()
}

// NewClientStorages opens the on-device store selected by cfg.Local.DSN:
//   - "memory" keeps entries in process, limited by cfg.Local.QuotaBytes;
//   - "file://<path>" keeps entries in a JSON file;
//   - anything else is a SQLite database path, created and migrated on
//     first use.
func NewClientStorages(cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Str("func", "NewClientStorages").Str("dsn", cfg.Local.DSN).Msg("creating new storages...")

	kv, err := newKeyValueStore(cfg.Local, log)
	if err != nil {
		return nil, err
	}

	return &ClientStorages{
		KeyValueStore:      kv,
		LocalSnapshotStore: NewLocalSnapshotStore(kv, log),
	}, nil
}

func newKeyValueStore(cfg config.Local, log *logger.Logger) (KeyValueStore, error) {
	switch {
	case cfg.DSN == "memory":
		return NewMemoryKV(cfg.QuotaBytes), nil

	case strings.HasPrefix(cfg.DSN, "file://"):
		kv, err := NewFileKV(strings.TrimPrefix(cfg.DSN, "file://"))
		if err != nil {
			return nil, fmt.Errorf("file store error: %w", err)
		}
		return kv, nil
	}

	db, err := NewConnectSQLite(context.Background(), strings.TrimPrefix(cfg.DSN, "sqlite://"), log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return NewSQLiteKV(db), nil
}
