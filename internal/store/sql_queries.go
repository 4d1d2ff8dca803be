// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/nutrilife-sync/migrations"
)

const snapshotsTable = "snapshots"

// upsertSuffix returns the dialect-specific conflict clause that turns an
// INSERT into snapshots into an insert-or-replace by user_id.
func upsertSuffix(dialect migrations.Dialect) string {
	if dialect == migrations.MySQL {
		return "ON DUPLICATE KEY UPDATE payload = VALUES(payload), last_synced = VALUES(last_synced), " +
			"size_bytes = VALUES(size_bytes), updated_at = VALUES(updated_at)"
	}
	return "ON CONFLICT (user_id) DO UPDATE SET payload = excluded.payload, last_synced = excluded.last_synced, " +
		"size_bytes = excluded.size_bytes, updated_at = excluded.updated_at"
}

func buildGetSnapshotQuery(b sq.StatementBuilderType, userID string) (string, []any, error) {
	query, args, err := b.Select("payload").
		From(snapshotsTable).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSaveSnapshotQuery(b sq.StatementBuilderType, dialect migrations.Dialect, info snapshotRow, updatedAt time.Time) (string, []any, error) {
	query, args, err := b.Insert(snapshotsTable).
		Columns("user_id", "payload", "last_synced", "size_bytes", "updated_at").
		Values(info.UserID, info.Payload, info.LastSynced, info.SizeBytes, updatedAt).
		Suffix(upsertSuffix(dialect)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteSnapshotQuery(b sq.StatementBuilderType, userID string) (string, []any, error) {
	query, args, err := b.Delete(snapshotsTable).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildListSnapshotsQuery(b sq.StatementBuilderType) (string, []any, error) {
	query, args, err := b.Select("user_id", "last_synced", "size_bytes").
		From(snapshotsTable).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// snapshotRow is the persisted form of a snapshot: the whole snapshot as
// JSON plus the columns needed for listing without decoding it.
type snapshotRow struct {
	UserID     string
	Payload    string
	LastSynced int64
	SizeBytes  int
}
