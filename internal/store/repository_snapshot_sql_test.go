// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/migrations"
	"github.com/MKhiriev/nutrilife-sync/models"
)

func newTestRepo(t *testing.T, dialect migrations.Dialect) (SnapshotRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewSQLSnapshotRepository(newDBFromSQL(db, dialect), logger.Nop()), mock
}

// ── GetSnapshot ─────────────────────────────────────────────────────────────

func TestSQLSnapshotRepository_GetSnapshot(t *testing.T) {
	want := testSnapshot(1700000000000)
	payload, err := json.Marshal(want)
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectQuery(`SELECT payload FROM snapshots WHERE user_id = \$1`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(string(payload)))

		got, err := repo.GetSnapshot(testContext(), "u1")
		require.NoError(t, err)
		assert.Equal(t, want.LastSynced, got.LastSynced)
		assert.Equal(t, want.Profile, got.Profile)
		assert.Len(t, got.Logs, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mysql placeholders", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.MySQL)
		mock.ExpectQuery(`SELECT payload FROM snapshots WHERE user_id = \?`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(string(payload)))

		_, err := repo.GetSnapshot(testContext(), "u1")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectQuery(`SELECT payload FROM snapshots`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"payload"}))

		_, err := repo.GetSnapshot(testContext(), "u1")
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
	})

	t.Run("malformed payload", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectQuery(`SELECT payload FROM snapshots`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{"profile":{}}`))

		_, err := repo.GetSnapshot(testContext(), "u1")
		assert.ErrorIs(t, err, models.ErrMalformedSnapshot)
	})

	t.Run("driver error", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectQuery(`SELECT payload FROM snapshots`).
			WithArgs("u1").
			WillReturnError(errors.New("boom"))

		_, err := repo.GetSnapshot(testContext(), "u1")
		assert.ErrorIs(t, err, ErrScanningRow)
	})
}

// ── SaveSnapshot ────────────────────────────────────────────────────────────

func TestSQLSnapshotRepository_SaveSnapshot(t *testing.T) {
	s := testSnapshot(1700000000000)

	t.Run("postgres upsert", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectExec(`INSERT INTO snapshots \(user_id,payload,last_synced,size_bytes,updated_at\) VALUES \(\$1,\$2,\$3,\$4,\$5\) ON CONFLICT \(user_id\) DO UPDATE`).
			WithArgs("u1", sqlmock.AnyArg(), int64(1700000000000), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		info, err := repo.SaveSnapshot(testContext(), "u1", s)
		require.NoError(t, err)
		assert.Equal(t, "u1", info.UserID)
		assert.Equal(t, int64(1700000000000), info.LastSynced)
		assert.Positive(t, info.SizeBytes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mysql upsert", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.MySQL)
		mock.ExpectExec(`INSERT INTO snapshots .* VALUES \(\?,\?,\?,\?,\?\) ON DUPLICATE KEY UPDATE`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		_, err := repo.SaveSnapshot(testContext(), "u1", s)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectExec(`INSERT INTO snapshots`).WillReturnError(errors.New("boom"))

		_, err := repo.SaveSnapshot(testContext(), "u1", s)
		assert.ErrorIs(t, err, ErrExecutingStatement)
	})
}

// ── DeleteSnapshot ──────────────────────────────────────────────────────────

func TestSQLSnapshotRepository_DeleteSnapshot(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectExec(`DELETE FROM snapshots WHERE user_id = \$1`).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.DeleteSnapshot(testContext(), "u1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing to delete", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectExec(`DELETE FROM snapshots`).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeleteSnapshot(testContext(), "u1"), ErrSnapshotNotFound)
	})
}

// ── ListSnapshots ───────────────────────────────────────────────────────────

func TestSQLSnapshotRepository_ListSnapshots(t *testing.T) {
	t.Run("rows", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectQuery(`SELECT user_id, last_synced, size_bytes FROM snapshots ORDER BY user_id`).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "last_synced", "size_bytes"}).
				AddRow("a", int64(10), 100).
				AddRow("b", int64(20), 200))

		got, err := repo.ListSnapshots(testContext())
		require.NoError(t, err)
		assert.Equal(t, []models.SnapshotInfo{
			{UserID: "a", LastSynced: 10, SizeBytes: 100},
			{UserID: "b", LastSynced: 20, SizeBytes: 200},
		}, got)
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectQuery(`SELECT user_id`).WillReturnError(errors.New("boom"))

		_, err := repo.ListSnapshots(context.Background())
		assert.ErrorIs(t, err, ErrExecutingQuery)
	})

	t.Run("row error", func(t *testing.T) {
		repo, mock := newTestRepo(t, migrations.Postgres)
		mock.ExpectQuery(`SELECT user_id`).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "last_synced", "size_bytes"}).
				AddRow("a", int64(10), 100).
				RowError(0, errors.New("broken")))

		_, err := repo.ListSnapshots(testContext())
		assert.ErrorIs(t, err, ErrScanningRows)
	})
}

// ── SQLite round trip ───────────────────────────────────────────────────────

func TestSQLSnapshotRepository_SQLiteRoundTrip(t *testing.T) {
	db, err := NewConnectSQLite(context.Background(), ":memory:", logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	repo := NewSQLSnapshotRepository(db, logger.Nop())
	ctx := testContext()

	_, err = repo.SaveSnapshot(ctx, "u1", testSnapshot(1))
	require.NoError(t, err)
	_, err = repo.SaveSnapshot(ctx, "u1", testSnapshot(2))
	require.NoError(t, err)

	got, err := repo.GetSnapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LastSynced)

	list, err := repo.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].LastSynced)

	require.NoError(t, repo.DeleteSnapshot(ctx, "u1"))
	_, err = repo.GetSnapshot(ctx, "u1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
