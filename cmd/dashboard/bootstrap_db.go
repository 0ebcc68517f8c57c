package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	config "github.com/NordCoder/homelab/internal/config/dashboard"
	"github.com/NordCoder/homelab/internal/domain/outbox"
	"github.com/NordCoder/homelab/internal/domain/service"
	"github.com/NordCoder/homelab/internal/domain/session"
	"github.com/NordCoder/homelab/internal/domain/user"
	"github.com/NordCoder/homelab/internal/repository/memory"
	pg "github.com/NordCoder/homelab/internal/repository/postgres"
	"github.com/NordCoder/homelab/internal/services/web/dashboard"
	"github.com/NordCoder/homelab/migrations"
)

type storage struct {
	users    user.Repo
	services service.Repo
	sessions session.Repo
	outbox   outbox.Repository
	tx       dashboard.Transactor
	ping     func(ctx context.Context) error
	close    func()
}

func initStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		st := memory.NewStore()
		return &storage{
			users:    st.Users(),
			services: st.Services(),
			sessions: st.Sessions(),
			outbox:   st.Outbox(),
			tx:       st,
			ping:     st.Ping,
			close:    func() {},
		}, nil

	case config.DriverPostgres:
		db, err := pg.New(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if cfg.Storage.AutoMigrate {
			if err := pg.Migrate(ctx, db, migrations.FS, logger.With(zap.String("component", "migrate"))); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &storage{
			users:    pg.NewUserRepo(db),
			services: pg.NewServiceRepo(db),
			sessions: pg.NewSessionRepo(db),
			outbox:   pg.NewOutboxRepo(db),
			tx:       pg.NewTransactor(db, logger),
			ping:     db.Ping,
			close:    db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
