// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/MKhiriev/nutrilife-sync/models"
)

const (
	ServiceName = "nutrilife.v1.SnapshotService"

	GetSnapshotMethod    = "/" + ServiceName + "/GetSnapshot"
	PutSnapshotMethod    = "/" + ServiceName + "/PutSnapshot"
	DeleteSnapshotMethod = "/" + ServiceName + "/DeleteSnapshot"
	ListSnapshotsMethod  = "/" + ServiceName + "/ListSnapshots"
)

// AuthorizationKey is the metadata key carrying "Bearer <jwt>".
const AuthorizationKey = "authorization"

type GetSnapshotRequest struct{}

type GetSnapshotResponse struct {
	Found    bool             `json:"found"`
	Snapshot *models.Snapshot `json:"snapshot,omitempty"`
}

// PutSnapshotRequest carries the dataset to store. Writer and Seq tag the
// push so the server can drop one that was overtaken by a later push.
type PutSnapshotRequest struct {
	Dataset models.Dataset `json:"dataset"`
	Writer  string         `json:"writer,omitempty"`
	Seq     uint64         `json:"seq,omitempty"`
}

type PutSnapshotResponse struct {
	Info models.SnapshotInfo `json:"info"`
}

type DeleteSnapshotRequest struct {
	UserID string `json:"user_id"`
}

type DeleteSnapshotResponse struct{}

type ListSnapshotsRequest struct{}

type ListSnapshotsResponse struct {
	Snapshots []models.SnapshotInfo `json:"snapshots"`
}

// SnapshotServiceServer is implemented by the gRPC handler. The calling user
// is taken from the authorization metadata.
type SnapshotServiceServer interface {
	GetSnapshot(ctx context.Context, req *GetSnapshotRequest) (*GetSnapshotResponse, error)
	PutSnapshot(ctx context.Context, req *PutSnapshotRequest) (*PutSnapshotResponse, error)
	DeleteSnapshot(ctx context.Context, req *DeleteSnapshotRequest) (*DeleteSnapshotResponse, error)
	ListSnapshots(ctx context.Context, req *ListSnapshotsRequest) (*ListSnapshotsResponse, error)
}

// RegisterSnapshotServiceServer registers srv on s.
func RegisterSnapshotServiceServer(s grpc.ServiceRegistrar, srv SnapshotServiceServer) {
	s.RegisterService(&SnapshotServiceDesc, srv)
}

// SnapshotServiceDesc describes the snapshot service for grpc.Server.
var SnapshotServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SnapshotServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSnapshot", Handler: getSnapshotHandler},
		{MethodName: "PutSnapshot", Handler: putSnapshotHandler},
		{MethodName: "DeleteSnapshot", Handler: deleteSnapshotHandler},
		{MethodName: "ListSnapshots", Handler: listSnapshotsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nutrilife/v1/snapshot.json",
}

func getSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetSnapshotRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SnapshotServiceServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetSnapshotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SnapshotServiceServer).GetSnapshot(ctx, req.(*GetSnapshotRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func putSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PutSnapshotRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SnapshotServiceServer).PutSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PutSnapshotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SnapshotServiceServer).PutSnapshot(ctx, req.(*PutSnapshotRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeleteSnapshotRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SnapshotServiceServer).DeleteSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DeleteSnapshotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SnapshotServiceServer).DeleteSnapshot(ctx, req.(*DeleteSnapshotRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listSnapshotsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListSnapshotsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SnapshotServiceServer).ListSnapshots(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListSnapshotsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SnapshotServiceServer).ListSnapshots(ctx, req.(*ListSnapshotsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// SnapshotServiceClient is the client side of the snapshot service.
type SnapshotServiceClient interface {
	GetSnapshot(ctx context.Context, in *GetSnapshotRequest, opts ...grpc.CallOption) (*GetSnapshotResponse, error)
	PutSnapshot(ctx context.Context, in *PutSnapshotRequest, opts ...grpc.CallOption) (*PutSnapshotResponse, error)
	DeleteSnapshot(ctx context.Context, in *DeleteSnapshotRequest, opts ...grpc.CallOption) (*DeleteSnapshotResponse, error)
	ListSnapshots(ctx context.Context, in *ListSnapshotsRequest, opts ...grpc.CallOption) (*ListSnapshotsResponse, error)
}

type snapshotServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSnapshotServiceClient returns a client that always uses the JSON codec.
func NewSnapshotServiceClient(cc grpc.ClientConnInterface) SnapshotServiceClient {
	return &snapshotServiceClient{cc: cc}
}

func (c *snapshotServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *snapshotServiceClient) GetSnapshot(ctx context.Context, in *GetSnapshotRequest, opts ...grpc.CallOption) (*GetSnapshotResponse, error) {
	out := new(GetSnapshotResponse)
	if err := c.invoke(ctx, GetSnapshotMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *snapshotServiceClient) PutSnapshot(ctx context.Context, in *PutSnapshotRequest, opts ...grpc.CallOption) (*PutSnapshotResponse, error) {
	out := new(PutSnapshotResponse)
	if err := c.invoke(ctx, PutSnapshotMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *snapshotServiceClient) DeleteSnapshot(ctx context.Context, in *DeleteSnapshotRequest, opts ...grpc.CallOption) (*DeleteSnapshotResponse, error) {
	out := new(DeleteSnapshotResponse)
	if err := c.invoke(ctx, DeleteSnapshotMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *snapshotServiceClient) ListSnapshots(ctx context.Context, in *ListSnapshotsRequest, opts ...grpc.CallOption) (*ListSnapshotsResponse, error) {
	out := new(ListSnapshotsResponse)
	if err := c.invoke(ctx, ListSnapshotsMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
