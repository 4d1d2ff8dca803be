// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const (
	defaultMongoDatabase = "nutrilife"
	snapshotsCollection  = "snapshots"
)

// mongoCollection is the subset of *mongo.Collection used by the repository.
type mongoCollection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// snapshotDocument is the stored form of a snapshot; one document per user.
type snapshotDocument struct {
	UserID     string    `bson:"_id"`
	Payload    string    `bson:"payload"`
	LastSynced int64     `bson:"last_synced"`
	SizeBytes  int       `bson:"size_bytes"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

type mongoSnapshotRepository struct {
	collection mongoCollection
	logger     *logger.Logger
}

// NewMongoSnapshotRepository constructs a [SnapshotRepository] over a
// MongoDB collection.
func NewMongoSnapshotRepository(collection mongoCollection, logger *logger.Logger) SnapshotRepository {
	return &mongoSnapshotRepository{
		collection: collection,
		logger:     logger,
	}
}

func (r *mongoSnapshotRepository) GetSnapshot(ctx context.Context, userID string) (models.Snapshot, error) {
	log := logger.FromContext(ctx)

	var doc snapshotDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "mongoSnapshotRepository.GetSnapshot").
			Str("user_id", userID).
			Msg("failed to find snapshot")
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	snapshot, err := models.DecodeSnapshot([]byte(doc.Payload))
	if err != nil {
		log.Warn().Err(err).
			Str("func", "mongoSnapshotRepository.GetSnapshot").
			Str("user_id", userID).
			Msg("stored snapshot is malformed")
		return models.Snapshot{}, err
	}

	return snapshot, nil
}

func (r *mongoSnapshotRepository) SaveSnapshot(ctx context.Context, userID string, s models.Snapshot) (models.SnapshotInfo, error) {
	log := logger.FromContext(ctx)

	row, err := encodeSnapshotRow(userID, s)
	if err != nil {
		return models.SnapshotInfo{}, err
	}

	doc := snapshotDocument{
		UserID:     row.UserID,
		Payload:    row.Payload,
		LastSynced: row.LastSynced,
		SizeBytes:  row.SizeBytes,
		UpdatedAt:  time.Now().UTC(),
	}

	_, err = r.collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: userID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		log.Err(err).
			Str("func", "mongoSnapshotRepository.SaveSnapshot").
			Str("user_id", userID).
			Msg("failed to save snapshot")
		return models.SnapshotInfo{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return row.info(), nil
}

func (r *mongoSnapshotRepository) DeleteSnapshot(ctx context.Context, userID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: userID}})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mongoSnapshotRepository.DeleteSnapshot").
			Str("user_id", userID).
			Msg("failed to delete snapshot")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if result == nil || result.DeletedCount == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (r *mongoSnapshotRepository) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	log := logger.FromContext(ctx)

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.D{{Key: "payload", Value: 0}})

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		log.Err(err).Str("func", "mongoSnapshotRepository.ListSnapshots").Msg("failed to list snapshots")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	results := make([]models.SnapshotInfo, 0, 16)
	if err = cursor.All(ctx, &results); err != nil {
		log.Err(err).Str("func", "mongoSnapshotRepository.ListSnapshots").Msg("failed to decode snapshots")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return results, nil
}

// NewConnectMongo connects to the MongoDB deployment in cfg.DSN and pings
// the primary, retrying network errors up to cfg.ConnectRetries times. The
// database is taken from the URI path, "nutrilife" when absent.
func NewConnectMongo(ctx context.Context, cfg config.DB, log *logger.Logger) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DSN))
	if err != nil {
		log.Err(err).Str("func", "NewConnectMongo").Msg("error occurred during database connection")
		return nil, nil, fmt.Errorf("error occurred during database connection: %w", err)
	}

	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}
	backoff := retry.WithMaxRetries(uint64(retries), retry.NewExponential(pingBackoff))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingErr := client.Ping(ctx, readpref.Primary())
		if pingErr != nil && (mongo.IsNetworkError(pingErr) || mongo.IsTimeout(pingErr)) {
			log.Warn().Err(pingErr).Str("func", "NewConnectMongo").Msg("database is not reachable yet, retrying")
			return retry.RetryableError(pingErr)
		}
		return pingErr
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		log.Err(err).Str("func", "NewConnectMongo").Msg("error connecting database (ping)")
		return nil, nil, fmt.Errorf("error connecting database (ping): %w", err)
	}
	log.Info().Str("func", "NewConnectMongo").Msg("connected to database successfully")

	return client, client.Database(mongoDatabaseName(cfg.DSN)), nil
}

func mongoDatabaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return defaultMongoDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultMongoDatabase
}
