// Package grpc provides the gRPC health service of the catalog.
package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the service name answered by the health check besides the empty name.
const ServiceName = "catalog.v1.ProductCatalog"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthServer struct {
	// Embed the unimplemented server for forward compatibility
	healthpb.UnimplementedHealthServer
	store  Pinger
	logger *slog.Logger
}

func NewHealthServer(store Pinger, logger *slog.Logger) *HealthServer {
	return &HealthServer{store: store, logger: logger.With("component", "grpc")}
}

// Check reports SERVING while the store answers a ping.
func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if req.GetService() != "" && req.GetService() != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "store ping failed", slog.Any("error", err))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
