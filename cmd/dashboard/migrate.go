package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "github.com/NordCoder/homelab/internal/config/dashboard"
	pg "github.com/NordCoder/homelab/internal/repository/postgres"
	"github.com/NordCoder/homelab/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage.Driver != config.DriverPostgres {
			return fmt.Errorf("migrate needs storage.driver=%s, got %q", config.DriverPostgres, cfg.Storage.Driver)
		}

		logger, err := initLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		db, err := pg.New(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()

		if err := pg.Migrate(ctx, db, migrations.FS, logger); err != nil {
			return err
		}
		logger.Info("migrations: up OK", zap.String("app", cfg.App.Name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
