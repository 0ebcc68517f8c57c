package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NordCoder/homelab/internal/domain"
	"github.com/NordCoder/homelab/internal/domain/events"
	"github.com/NordCoder/homelab/internal/domain/outbox"
	"github.com/NordCoder/homelab/internal/domain/service"
	"github.com/NordCoder/homelab/internal/domain/session"
	"github.com/NordCoder/homelab/internal/obs"
)

var ErrServiceInvalid = errors.New("name and url required")

var renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "dashboard_render_duration_seconds",
	Help:    "Time to list, probe and persist all services of one dashboard view.",
	Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 3, 5, 10},
})

type Prober interface {
	Probe(ctx context.Context, url string) service.Status
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Config struct {
	// Concurrency bounds parallel probes of one render; 1 probes sequentially.
	Concurrency int
	// EmitEvents writes an outbox row for every status change.
	EmitEvents bool
	Now        func() time.Time
}

type Usecase struct {
	services service.Repo
	prober   Prober
	tx       Transactor
	outbox   outbox.Repository
	cfg      Config
	log      *zap.Logger
}

func NewUseCase(services service.Repo, prober Prober, tx Transactor, ob outbox.Repository, cfg Config, log *zap.Logger) *Usecase {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if ob == nil {
		cfg.EmitEvents = false
	}
	return &Usecase{
		services: services,
		prober:   prober,
		tx:       tx,
		outbox:   ob,
		cfg:      cfg,
		log:      obs.Component(log, "dashboard"),
	}
}

// Render probes every service of the user, persists each result and returns
// the services in store order with their fresh statuses.
func (u *Usecase) Render(ctx context.Context, id session.Identity) ([]*service.Service, error) {
	start := time.Now()
	defer func() { renderDuration.Observe(time.Since(start).Seconds()) }()

	tr := otel.Tracer("dashboard")
	ctx, span := tr.Start(ctx, "dashboard.render", trace.WithAttributes(attribute.Int64("user.id", id.UserID)))
	defer span.End()

	list, err := u.services.ListByOwner(ctx, id.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list services: %w", err)
	}
	span.SetAttributes(attribute.Int("services.count", len(list)))

	gone := make([]bool, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.cfg.Concurrency)
	for i, svc := range list {
		g.Go(func() error {
			err := u.refresh(gctx, tr, svc)
			if errors.Is(err, domain.ErrNotFound) {
				// deleted while probing
				obs.WithTrace(gctx, u.log).Debug("service vanished during render",
					zap.Int64("user_id", id.UserID), zap.Int64("service_id", svc.ID))
				gone[i] = true
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := list[:0]
	for i, svc := range list {
		if !gone[i] {
			out = append(out, svc)
		}
	}
	return out, nil
}

// refresh probes one service and overwrites its stored status in place.
// A service removed since it was listed yields domain.ErrNotFound.
func (u *Usecase) refresh(ctx context.Context, tr trace.Tracer, svc *service.Service) error {
	ctx, span := tr.Start(ctx, "dashboard.probe", trace.WithAttributes(
		attribute.Int64("service.id", svc.ID),
		attribute.String("service.url", svc.URL),
	))
	defer span.End()

	old := svc.Status
	status := u.prober.Probe(ctx, svc.URL)
	span.SetAttributes(attribute.String("service.status", status.String()))

	if err := u.persist(ctx, svc, old, status); err != nil {
		span.RecordError(err)
		return fmt.Errorf("persist status of service %d: %w", svc.ID, err)
	}
	svc.Status = status
	return nil
}

func (u *Usecase) persist(ctx context.Context, svc *service.Service, old, status service.Status) error {
	if !u.cfg.EmitEvents || old == status {
		return u.services.UpdateStatus(ctx, svc.ID, status)
	}

	data, err := json.Marshal(events.StatusChanged{
		ServiceID: svc.ID,
		OwnerID:   svc.OwnerID,
		Name:      svc.Name,
		URL:       svc.URL,
		Old:       old.String(),
		New:       status.String(),
		At:        u.cfg.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}
	return u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.services.UpdateStatus(ctx, svc.ID, status); err != nil {
			return err
		}
		return u.outbox.Enqueue(ctx, uuid.NewString(), outbox.KindServiceStatusChanged, data)
	})
}

func (u *Usecase) AddService(ctx context.Context, id session.Identity, name, url string) (*service.Service, error) {
	name, url = strings.TrimSpace(name), strings.TrimSpace(url)
	if name == "" || url == "" {
		return nil, ErrServiceInvalid
	}
	svc := &service.Service{OwnerID: id.UserID, Name: name, URL: url}
	if err := u.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	obs.WithTrace(ctx, u.log).Info("service added",
		zap.Int64("user_id", id.UserID), zap.Int64("service_id", svc.ID), zap.String("url", url))
	return svc, nil
}

// Delete removes the service if the user owns it. Anything else is a silent no-op.
func (u *Usecase) Delete(ctx context.Context, id session.Identity, serviceID int64) error {
	deleted, err := u.services.DeleteOwned(ctx, serviceID, id.UserID)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if !deleted {
		obs.WithTrace(ctx, u.log).Debug("delete ignored: not found or not owned",
			zap.Int64("user_id", id.UserID), zap.Int64("service_id", serviceID))
		return nil
	}
	obs.WithTrace(ctx, u.log).Info("service deleted",
		zap.Int64("user_id", id.UserID), zap.Int64("service_id", serviceID))
	return nil
}
