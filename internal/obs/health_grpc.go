package obs

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// HealthServer answers grpc.health.v1 checks by running a dependency probe on demand.
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	check   func(context.Context) error
	timeout time.Duration
}

var _ healthpb.HealthServer = (*HealthServer)(nil)

func NewHealthServer(check func(context.Context) error) *HealthServer {
	return &HealthServer{check: check, timeout: 500 * time.Millisecond}
}

func (h *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != "dashboard" {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}
	hctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := h.check(hctx); err != nil {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
