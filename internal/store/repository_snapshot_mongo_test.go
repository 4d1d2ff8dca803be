// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

type fakeCollection struct {
	findOne    *mongo.SingleResult
	replaced   any
	upsert     bool
	replaceErr error
	deleted    int64
	deleteErr  error
	docs       []any
	findErr    error
}

func (f *fakeCollection) FindOne(context.Context, any, ...*options.FindOneOptions) *mongo.SingleResult {
	return f.findOne
}

func (f *fakeCollection) ReplaceOne(_ context.Context, _ any, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	f.replaced = replacement
	for _, o := range opts {
		if o.Upsert != nil {
			f.upsert = *o.Upsert
		}
	}
	return &mongo.UpdateResult{UpsertedCount: 1}, f.replaceErr
}

func (f *fakeCollection) DeleteOne(context.Context, any, ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &mongo.DeleteResult{DeletedCount: f.deleted}, nil
}

func (f *fakeCollection) Find(context.Context, any, ...*options.FindOptions) (*mongo.Cursor, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

func TestMongoSnapshotRepository_GetSnapshot(t *testing.T) {
	want := testSnapshot(42)
	payload, err := json.Marshal(want)
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		coll := &fakeCollection{findOne: mongo.NewSingleResultFromDocument(
			snapshotDocument{UserID: "u1", Payload: string(payload), LastSynced: 42}, nil, nil)}
		repo := NewMongoSnapshotRepository(coll, logger.Nop())

		got, err := repo.GetSnapshot(testContext(), "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.LastSynced)
		assert.Equal(t, want.Profile, got.Profile)
	})

	t.Run("not found", func(t *testing.T) {
		coll := &fakeCollection{findOne: mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)}
		repo := NewMongoSnapshotRepository(coll, logger.Nop())

		_, err := repo.GetSnapshot(testContext(), "u1")
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
	})

	t.Run("malformed", func(t *testing.T) {
		coll := &fakeCollection{findOne: mongo.NewSingleResultFromDocument(
			snapshotDocument{UserID: "u1", Payload: "[]"}, nil, nil)}
		repo := NewMongoSnapshotRepository(coll, logger.Nop())

		_, err := repo.GetSnapshot(testContext(), "u1")
		assert.ErrorIs(t, err, models.ErrMalformedSnapshot)
	})
}

func TestMongoSnapshotRepository_SaveSnapshot(t *testing.T) {
	coll := &fakeCollection{}
	repo := NewMongoSnapshotRepository(coll, logger.Nop())

	info, err := repo.SaveSnapshot(testContext(), "u1", testSnapshot(7))
	require.NoError(t, err)
	assert.True(t, coll.upsert)
	assert.Equal(t, "u1", info.UserID)

	doc, ok := coll.replaced.(snapshotDocument)
	require.True(t, ok)
	assert.Equal(t, int64(7), doc.LastSynced)
	assert.Equal(t, len(doc.Payload), doc.SizeBytes)

	coll.replaceErr = errors.New("boom")
	_, err = repo.SaveSnapshot(testContext(), "u1", testSnapshot(8))
	assert.ErrorIs(t, err, ErrExecutingStatement)
}

func TestMongoSnapshotRepository_DeleteSnapshot(t *testing.T) {
	repo := NewMongoSnapshotRepository(&fakeCollection{deleted: 1}, logger.Nop())
	assert.NoError(t, repo.DeleteSnapshot(testContext(), "u1"))

	repo = NewMongoSnapshotRepository(&fakeCollection{}, logger.Nop())
	assert.ErrorIs(t, repo.DeleteSnapshot(testContext(), "u1"), ErrSnapshotNotFound)
}

func TestMongoSnapshotRepository_ListSnapshots(t *testing.T) {
	coll := &fakeCollection{docs: []any{
		bson.D{{Key: "_id", Value: "a"}, {Key: "last_synced", Value: int64(1)}, {Key: "size_bytes", Value: 10}},
		bson.D{{Key: "_id", Value: "b"}, {Key: "last_synced", Value: int64(2)}, {Key: "size_bytes", Value: 20}},
	}}
	repo := NewMongoSnapshotRepository(coll, logger.Nop())

	got, err := repo.ListSnapshots(testContext())
	require.NoError(t, err)
	assert.Equal(t, []models.SnapshotInfo{
		{UserID: "a", LastSynced: 1, SizeBytes: 10},
		{UserID: "b", LastSynced: 2, SizeBytes: 20},
	}, got)
}

func TestMongoDatabaseName(t *testing.T) {
	assert.Equal(t, "prod", mongoDatabaseName("mongodb://localhost:27017/prod"))
	assert.Equal(t, "nutrilife", mongoDatabaseName("mongodb://localhost:27017"))
	assert.Equal(t, "nutrilife", mongoDatabaseName("mongodb+srv://cluster.example.net/"))
}
