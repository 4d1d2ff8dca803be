// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	myGRPC "github.com/MKhiriev/nutrilife-sync/internal/handler/grpc"
)

type grpcServer struct {
	address  string
	server   *grpc.Server
	listener net.Listener
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server) *grpcServer {
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(handler.UnaryInterceptors()...)}
	if cfg.MaxPayloadBytes > 0 {
		// room for the message envelope around the dataset
		opts = append(opts, grpc.MaxRecvMsgSize(2*cfg.MaxPayloadBytes))
	}

	server := grpc.NewServer(opts...)
	handler.Register(server)

	return &grpcServer{address: cfg.GRPCAddress, server: server}
}

func (g *grpcServer) name() string { return "gRPC" }

func (g *grpcServer) listen() error {
	lis, err := net.Listen("tcp", g.address)
	if err != nil {
		return err
	}
	g.listener = lis
	return nil
}

func (g *grpcServer) serve() error {
	if g.listener == nil {
		return errNotListening
	}
	if err := g.server.Serve(g.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// shutdown stops gracefully and falls back to a hard stop when ctx expires.
func (g *grpcServer) shutdown(ctx context.Context) error {
	if g.listener != nil {
		defer g.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()
		return ctx.Err()
	}
}

func (g *grpcServer) addr() string {
	if g.listener == nil {
		return g.address
	}
	return g.listener.Addr().String()
}
