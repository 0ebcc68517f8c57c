package main

import (
	"net"

	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	config "github.com/NordCoder/homelab/internal/config/dashboard"
	"github.com/NordCoder/homelab/internal/obs"
)

// buildGRPCServer serves the ops endpoint: grpc.health.v1 backed by the store ping, plus reflection.
func buildGRPCServer(cfg *config.Config, st *storage) (*grpc.Server, net.Listener, error) {
	grpcMetrics := grpcprometheus.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		return nil, nil, err
	}

	opts := obs.GRPCServerOpts()
	opts = append(opts,
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)

	grpcServer := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(grpcServer, obs.NewHealthServer(st.ping))
	reflection.Register(grpcServer)
	grpcMetrics.InitializeMetrics(grpcServer)

	ln, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return nil, nil, err
	}
	return grpcServer, ln, nil
}

func serveGRPC(s *grpc.Server, ln net.Listener, logger *zap.Logger) error {
	logger.Info("grpc listening", zap.String("addr", ln.Addr().String()))
	return s.Serve(ln)
}
