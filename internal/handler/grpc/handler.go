// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package grpc implements the gRPC transport of the remote store of record.
// It serves [rpc.SnapshotServiceServer] with the same semantics as the REST
// API; the calling user comes from the bearer token in the
// "authorization" metadata.
package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/rpc"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
	"github.com/MKhiriev/nutrilife-sync/internal/tracing"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// Handler is the root gRPC transport handler. One instance is created at
// startup and shared by the gRPC server.
type Handler struct {
	services *service.Services
	tracer   *tracing.Tracer
	logger   *logger.Logger
}

var _ rpc.SnapshotServiceServer = (*Handler)(nil)

// NewHandler constructs a [Handler]. tracer may be nil.
func NewHandler(services *service.Services, tracer *tracing.Tracer, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services: services,
		tracer:   tracer,
		logger:   logger,
	}
}

// Register registers the snapshot service on s.
func (h *Handler) Register(s grpc.ServiceRegistrar) {
	rpc.RegisterSnapshotServiceServer(s, h)
}

// UnaryInterceptors returns the interceptor chain in execution order.
func (h *Handler) UnaryInterceptors() []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		h.recoverInterceptor,
		h.loggingInterceptor,
		h.tracingInterceptor,
		h.authInterceptor,
	}
}

func (h *Handler) GetSnapshot(ctx context.Context, _ *rpc.GetSnapshotRequest) (*rpc.GetSnapshotResponse, error) {
	userID, _ := utils.GetUserIDFromContext(ctx)

	snapshot, err := h.services.SnapshotService.GetSnapshot(ctx, userID)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return &rpc.GetSnapshotResponse{Found: false}, nil
	}
	if err != nil {
		return nil, toStatus(ctx, "Handler.GetSnapshot", err)
	}

	return &rpc.GetSnapshotResponse{Found: true, Snapshot: &snapshot}, nil
}

func (h *Handler) PutSnapshot(ctx context.Context, req *rpc.PutSnapshotRequest) (*rpc.PutSnapshotResponse, error) {
	userID, _ := utils.GetUserIDFromContext(ctx)

	if req.Writer != "" {
		ctx = utils.WithWriteTag(ctx, models.WriteTag{Writer: req.Writer, Seq: req.Seq})
	}

	info, err := h.services.SnapshotService.SaveSnapshot(ctx, userID, req.Dataset)
	if err != nil {
		return nil, toStatus(ctx, "Handler.PutSnapshot", err)
	}

	return &rpc.PutSnapshotResponse{Info: info}, nil
}

// DeleteSnapshot removes the snapshot of req.UserID, or of the caller when
// it is empty. Admins may remove any account, users only their own.
func (h *Handler) DeleteSnapshot(ctx context.Context, req *rpc.DeleteSnapshotRequest) (*rpc.DeleteSnapshotResponse, error) {
	callerID, _ := utils.GetUserIDFromContext(ctx)
	role, _ := utils.GetRoleFromContext(ctx)

	target := req.UserID
	if target == "" {
		target = callerID
	}
	if role != models.RoleAdmin && target != callerID {
		return nil, toStatus(ctx, "Handler.DeleteSnapshot", service.ErrForbidden)
	}

	if err := h.services.SnapshotService.DeleteSnapshot(ctx, target); err != nil {
		return nil, toStatus(ctx, "Handler.DeleteSnapshot", err)
	}

	logger.FromContext(ctx).Info().Str("func", "Handler.DeleteSnapshot").Str("user_id", target).Msg("snapshot removed")
	return &rpc.DeleteSnapshotResponse{}, nil
}

// ListSnapshots is admin only.
func (h *Handler) ListSnapshots(ctx context.Context, _ *rpc.ListSnapshotsRequest) (*rpc.ListSnapshotsResponse, error) {
	if role, _ := utils.GetRoleFromContext(ctx); role != models.RoleAdmin {
		return nil, toStatus(ctx, "Handler.ListSnapshots", service.ErrForbidden)
	}

	infos, err := h.services.SnapshotService.ListSnapshots(ctx)
	if err != nil {
		return nil, toStatus(ctx, "Handler.ListSnapshots", err)
	}
	if infos == nil {
		infos = []models.SnapshotInfo{}
	}

	return &rpc.ListSnapshotsResponse{Snapshots: infos}, nil
}
