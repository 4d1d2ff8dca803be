// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const kvTable = "kv_entries"

// sqliteKV is the default on-device [KeyValueStore]: one row per key in the
// kv_entries table.
type sqliteKV struct {
	db *DB
}

// NewSQLiteKV wraps a migrated SQLite connection as a [KeyValueStore].
func NewSQLiteKV(db *DB) KeyValueStore {
	return &sqliteKV{db: db}
}

func (s *sqliteKV) Get(key string) (string, bool, error) {
	query, args, err := s.db.builder().
		Select("value").
		From(kvTable).
		Where("key = ?", key).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value string
	err = s.db.QueryRowContext(context.Background(), query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return value, true, nil
}

func (s *sqliteKV) Set(key, value string) error {
	query, args, err := s.db.builder().
		Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UnixMilli()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.db.ExecContext(context.Background(), query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (s *sqliteKV) Delete(key string) error {
	query, args, err := s.db.builder().
		Delete(kvTable).
		Where("key = ?", key).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.db.ExecContext(context.Background(), query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (s *sqliteKV) Close() error {
	return s.db.Close()
}
