package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the dashboard web UI.

On start the database schema is migrated (storage.auto_migrate), the HTTP
listener serves the UI with /healthz and /metrics, and the optional ops gRPC
listener answers grpc.health.v1 checks. Runs until SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting dashboard",
		zap.String("env", cfg.App.Env), zap.String("ver", cfg.App.Version), zap.String("storage", cfg.Storage.Driver))

	otelShutdown, err := initOTel(rootCtx, cfg, logger)
	if err != nil {
		logger.Error("otel init", zap.Error(err))
		return err
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	st, err := initStorage(rootCtx, cfg, logger)
	if err != nil {
		logger.Error("storage init", zap.Error(err))
		return err
	}
	defer st.close()

	stopEvents := startEvents(rootCtx, cfg, st, logger)
	defer stopEvents()

	var (
		grpcServer *grpc.Server
		grpcErrCh  = make(chan error, 1)
	)
	if cfg.Server.GRPCEnable {
		srv, ln, err := buildGRPCServer(cfg, st)
		if err != nil {
			logger.Error("build grpc", zap.Error(err))
			return err
		}
		grpcServer = srv
		go func() { grpcErrCh <- serveGRPC(srv, ln, logger) }()
	}

	httpSrv, err := buildHTTPServer(cfg, logger, st)
	if err != nil {
		logger.Error("build http", zap.Error(err))
		return err
	}
	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- serveHTTP(httpSrv, logger) }()

	var runErr error
	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal", zap.String("reason", "context canceled"))
	case runErr = <-grpcErrCh:
		if runErr != nil {
			logger.Error("grpc serve", zap.Error(runErr))
		}
	case runErr = <-httpErrCh:
		if errors.Is(runErr, http.ErrServerClosed) {
			runErr = nil
		}
		if runErr != nil {
			logger.Error("http serve", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	logger.Info("bye")
	return runErr
}
