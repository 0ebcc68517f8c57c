package main

import (
	"go.uber.org/zap"

	config "github.com/NordCoder/homelab/internal/config/dashboard"
	"github.com/NordCoder/homelab/internal/obs"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.AsLoggerConfig())
}
