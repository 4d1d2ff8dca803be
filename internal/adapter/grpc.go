// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/rpc"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// GRPCServerAdapter is the gRPC implementation of [ServerAdapter].
type GRPCServerAdapter struct {
	conn           *grpc.ClientConn
	client         rpc.SnapshotServiceClient
	tokens         *tokenCache
	tags           *writeTagger
	requestTimeout time.Duration

	logger *logger.Logger
}

// NewGRPCServerAdapter dials adapterCfg.GRPCAddress lazily and returns a
// gRPC implementation of [ServerAdapter]. Extra dial options are appended
// after the defaults (plaintext transport).
func NewGRPCServerAdapter(adapterCfg config.Adapter, creds Credentials, logger *logger.Logger, opts ...grpc.DialOption) (*GRPCServerAdapter, error) {
	if adapterCfg.GRPCAddress == "" {
		return nil, fmt.Errorf("invalid adapter grpc address: empty address")
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(adapterCfg.GRPCAddress, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client: %w", err)
	}

	return &GRPCServerAdapter{
		conn:           conn,
		client:         rpc.NewSnapshotServiceClient(conn),
		tokens:         newTokenCache(creds),
		tags:           newWriteTagger(),
		requestTimeout: adapterCfg.RequestTimeout,
		logger:         logger,
	}, nil
}

// Close releases the client connection.
func (g *GRPCServerAdapter) Close() error {
	return g.conn.Close()
}

func (g *GRPCServerAdapter) GetSnapshot(ctx context.Context, userID string) (models.Snapshot, bool, error) {
	ctx, cancel, err := g.callContext(ctx, userID)
	if err != nil {
		return models.Snapshot{}, false, err
	}
	defer cancel()

	resp, err := g.client.GetSnapshot(ctx, &rpc.GetSnapshotRequest{})
	if err != nil {
		return models.Snapshot{}, false, mapGRPCError(err)
	}
	if !resp.Found || resp.Snapshot == nil {
		return models.Snapshot{}, false, nil
	}

	if err = resp.Snapshot.Dataset.Validate(); err != nil {
		return models.Snapshot{}, false, fmt.Errorf("%w: %w", models.ErrMalformedSnapshot, err)
	}
	resp.Snapshot.Dataset.Normalize()

	return *resp.Snapshot, true, nil
}

func (g *GRPCServerAdapter) PutSnapshot(ctx context.Context, userID string, d models.Dataset) bool {
	log := g.logger.With().Str("func", "GRPCServerAdapter.PutSnapshot").Str("user_id", userID).Logger()

	ctx, cancel, err := g.callContext(ctx, userID)
	if err != nil {
		log.Err(err).Msg("failed to create token")
		return false
	}
	defer cancel()

	tag := g.tags.next()
	resp, err := g.client.PutSnapshot(ctx, &rpc.PutSnapshotRequest{Dataset: d, Writer: tag.Writer, Seq: tag.Seq})
	if err != nil {
		log.Warn().Err(mapGRPCError(err)).Msg("put snapshot failed")
		return false
	}

	log.Debug().Int64("last_synced", resp.Info.LastSynced).Int("size_bytes", resp.Info.SizeBytes).Msg("snapshot pushed")
	return true
}

func (g *GRPCServerAdapter) DeleteSnapshot(ctx context.Context, userID string) error {
	ctx, cancel, err := g.callContext(ctx, userID)
	if err != nil {
		return err
	}
	defer cancel()

	_, err = g.client.DeleteSnapshot(ctx, &rpc.DeleteSnapshotRequest{UserID: userID})
	if err = mapGRPCError(err); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (g *GRPCServerAdapter) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	ctx, cancel, err := g.callContext(ctx, "")
	if err != nil {
		return nil, err
	}
	defer cancel()

	resp, err := g.client.ListSnapshots(ctx, &rpc.ListSnapshotsRequest{})
	if err != nil {
		return nil, mapGRPCError(err)
	}
	if resp.Snapshots == nil {
		return []models.SnapshotInfo{}, nil
	}
	return resp.Snapshots, nil
}

// callContext attaches the bearer token and bounds the call with the
// configured request timeout.
func (g *GRPCServerAdapter) callContext(ctx context.Context, userID string) (context.Context, context.CancelFunc, error) {
	token, err := g.tokens.token(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	ctx = metadata.AppendToOutgoingContext(ctx, rpc.AuthorizationKey, "Bearer "+token)
	if g.requestTimeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, g.requestTimeout)
		return ctx, cancel, nil
	}
	return ctx, func() {}, nil
}
