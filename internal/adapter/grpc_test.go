// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/rpc"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// fakeSnapshotServer keeps snapshots in a map keyed by the token subject.
type fakeSnapshotServer struct {
	snapshots map[string]models.Snapshot
	tags      []models.WriteTag
	failPut   bool
}

func (f *fakeSnapshotServer) user(ctx context.Context) (models.Token, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get(rpc.AuthorizationKey)
	if len(values) == 0 {
		return models.Token{}, status.Error(codes.Unauthenticated, "missing token")
	}
	token, err := utils.ValidateAndParseJWTToken(strings.TrimPrefix(values[0], "Bearer "), testSignKey, testIssuer)
	if err != nil {
		return models.Token{}, status.Error(codes.Unauthenticated, err.Error())
	}
	return token, nil
}

func (f *fakeSnapshotServer) GetSnapshot(ctx context.Context, _ *rpc.GetSnapshotRequest) (*rpc.GetSnapshotResponse, error) {
	token, err := f.user(ctx)
	if err != nil {
		return nil, err
	}
	s, ok := f.snapshots[token.UserID]
	if !ok {
		return &rpc.GetSnapshotResponse{}, nil
	}
	return &rpc.GetSnapshotResponse{Found: true, Snapshot: &s}, nil
}

func (f *fakeSnapshotServer) PutSnapshot(ctx context.Context, req *rpc.PutSnapshotRequest) (*rpc.PutSnapshotResponse, error) {
	token, err := f.user(ctx)
	if err != nil {
		return nil, err
	}
	if f.failPut {
		return nil, status.Error(codes.Unavailable, "maintenance")
	}
	f.tags = append(f.tags, models.WriteTag{Writer: req.Writer, Seq: req.Seq})
	f.snapshots[token.UserID] = models.Snapshot{Dataset: req.Dataset, LastSynced: 1000}
	return &rpc.PutSnapshotResponse{Info: models.SnapshotInfo{UserID: token.UserID, LastSynced: 1000}}, nil
}

func (f *fakeSnapshotServer) DeleteSnapshot(ctx context.Context, req *rpc.DeleteSnapshotRequest) (*rpc.DeleteSnapshotResponse, error) {
	if _, err := f.user(ctx); err != nil {
		return nil, err
	}
	if _, ok := f.snapshots[req.UserID]; !ok {
		return nil, status.Error(codes.NotFound, "snapshot was not found")
	}
	delete(f.snapshots, req.UserID)
	return &rpc.DeleteSnapshotResponse{}, nil
}

func (f *fakeSnapshotServer) ListSnapshots(ctx context.Context, _ *rpc.ListSnapshotsRequest) (*rpc.ListSnapshotsResponse, error) {
	token, err := f.user(ctx)
	if err != nil {
		return nil, err
	}
	if !token.IsAdmin() {
		return nil, status.Error(codes.PermissionDenied, "admin role required")
	}
	out := make([]models.SnapshotInfo, 0, len(f.snapshots))
	for id, s := range f.snapshots {
		out = append(out, models.SnapshotInfo{UserID: id, LastSynced: s.LastSynced})
	}
	return &rpc.ListSnapshotsResponse{Snapshots: out}, nil
}

func newBufconnAdapter(t *testing.T, srv rpc.SnapshotServiceServer, creds Credentials) *GRPCServerAdapter {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	rpc.RegisterSnapshotServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	a, err := NewGRPCServerAdapter(
		config.Adapter{GRPCAddress: "passthrough:///bufnet", RequestTimeout: 2 * time.Second},
		creds,
		logger.Nop(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestGRPCServerAdapter_RoundTrip(t *testing.T) {
	srv := &fakeSnapshotServer{snapshots: map[string]models.Snapshot{}}
	a := newBufconnAdapter(t, srv, testCredentials(models.RoleUser))
	ctx := context.Background()

	_, ok, err := a.GetSnapshot(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.True(t, a.PutSnapshot(ctx, "u1", testDataset()))
	require.True(t, a.PutSnapshot(ctx, "u1", testDataset()))

	require.Len(t, srv.tags, 2)
	assert.NotEmpty(t, srv.tags[0].Writer)
	assert.Equal(t, srv.tags[0].Writer, srv.tags[1].Writer)
	assert.Equal(t, []uint64{1, 2}, []uint64{srv.tags[0].Seq, srv.tags[1].Seq})

	got, ok, err := a.GetSnapshot(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1000), got.LastSynced)
	assert.Equal(t, "Ann", got.Profile.Name)
	assert.NotNil(t, got.Logs)

	require.NoError(t, a.DeleteSnapshot(ctx, "u1"))
	require.NoError(t, a.DeleteSnapshot(ctx, "u1"))

	_, err = a.ListSnapshots(ctx)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGRPCServerAdapter_Failures(t *testing.T) {
	srv := &fakeSnapshotServer{snapshots: map[string]models.Snapshot{}, failPut: true}
	a := newBufconnAdapter(t, srv, testCredentials(models.RoleUser))

	assert.False(t, a.PutSnapshot(context.Background(), "u1", testDataset()))

	srv.snapshots["u1"] = models.Snapshot{Dataset: models.Dataset{}}
	_, ok, err := a.GetSnapshot(context.Background(), "u1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, models.ErrMalformedSnapshot)
}

func TestGRPCServerAdapter_Admin(t *testing.T) {
	srv := &fakeSnapshotServer{snapshots: map[string]models.Snapshot{
		"a": {Dataset: testDataset(), LastSynced: 3},
	}}
	a := newBufconnAdapter(t, srv, testCredentials(models.RoleAdmin))

	got, err := a.ListSnapshots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.SnapshotInfo{{UserID: "a", LastSynced: 3}}, got)
}

func TestNewGRPCServerAdapter_EmptyAddress(t *testing.T) {
	_, err := NewGRPCServerAdapter(config.Adapter{}, testCredentials(models.RoleUser), logger.Nop())
	assert.Error(t, err)
}
