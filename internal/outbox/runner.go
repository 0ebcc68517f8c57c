package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/NordCoder/homelab/internal/domain/outbox"
	"github.com/NordCoder/homelab/internal/obs"
)

var (
	mPicked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_picked_total", Help: "Messages picked into processing.",
	})
	mOk = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_processed_ok_total", Help: "Messages processed successfully.",
	})
	mErr = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_processed_err_total", Help: "Handler errors.",
	})
	mTickDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "outbox_tick_duration_seconds", Help: "Tick duration.",
		Buckets: prometheus.DefBuckets,
	})
	mBatchSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_last_batch_size", Help: "Size of last picked batch.",
	})
)

type Config struct {
	Workers       int
	BatchSize     int
	WaitTime      time.Duration
	InProgressTTL time.Duration
}

// Runner relays outbox rows to their handlers. A message whose handler fails
// stays IN_PROGRESS and is picked again after InProgressTTL.
type Runner struct {
	log      *zap.Logger
	repo     outbox.Repository
	dispatch outbox.GlobalHandler
	cfg      Config

	wg sync.WaitGroup
}

func NewOutboxRunner(log *zap.Logger, repo outbox.Repository, dispatch outbox.GlobalHandler, cfg Config) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.WaitTime <= 0 {
		cfg.WaitTime = 2 * time.Second
	}
	if cfg.InProgressTTL <= 0 {
		cfg.InProgressTTL = 30 * time.Second
	}
	return &Runner{
		log:      obs.Component(log, "outbox.runner"),
		repo:     repo,
		dispatch: dispatch,
		cfg:      cfg,
	}
}

// Start launches the workers; they stop when ctx is done. Wait blocks until they have.
func (r *Runner) Start(ctx context.Context) {
	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx, i)
	}
}

func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) worker(ctx context.Context, id int) {
	defer r.wg.Done()
	log := r.log.With(zap.Int("worker", id))
	log.Info("outbox worker started", zap.Duration("wait", r.cfg.WaitTime))

	ticker := time.NewTicker(r.cfg.WaitTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stop")
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick picks one batch, dispatches every message and marks the successful ones.
// It returns the number of messages marked as sent.
func (r *Runner) Tick(ctx context.Context) int {
	t0 := time.Now()
	defer func() { mTickDur.Observe(time.Since(t0).Seconds()) }()

	tr := otel.Tracer("outbox.runner")
	ctx, span := tr.Start(ctx, "outbox.tick")
	defer span.End()
	span.SetAttributes(
		attribute.Int("batch.limit", r.cfg.BatchSize),
		attribute.String("in_progress_ttl", r.cfg.InProgressTTL.String()),
	)

	messages, err := r.repo.PickBatch(ctx, r.cfg.BatchSize, r.cfg.InProgressTTL)
	if err != nil {
		span.RecordError(err)
		mErr.Inc()
		obs.WithTrace(ctx, r.log).Error("outbox pick error", zap.Error(err))
		return 0
	}
	mPicked.Add(float64(len(messages)))
	mBatchSize.Set(float64(len(messages)))

	okKeys := make([]string, 0, len(messages))
	for _, m := range messages {
		if r.handle(ctx, tr, m) {
			okKeys = append(okKeys, m.IdempotencyKey)
			mOk.Inc()
		}
	}

	if err := r.repo.MarkSuccess(ctx, okKeys); err != nil {
		span.RecordError(err)
		mErr.Inc()
		obs.WithTrace(ctx, r.log).Error("mark success error", zap.Error(err))
		return 0
	}
	return len(okKeys)
}

func (r *Runner) handle(ctx context.Context, tr trace.Tracer, m outbox.Message) bool {
	msgCtx, msgSpan := tr.Start(ctx, "outbox.dispatch",
		trace.WithAttributes(
			attribute.String("outbox.key", m.IdempotencyKey),
			attribute.Int("outbox.kind", int(m.Kind)),
		),
	)
	defer msgSpan.End()

	handler, err := r.dispatch(m.Kind)
	if err != nil {
		msgSpan.RecordError(err)
		mErr.Inc()
		obs.WithTrace(msgCtx, r.log).Error("no handler for kind",
			zap.Int("kind", int(m.Kind)), zap.Error(err))
		return false
	}

	if err := handler(msgCtx, m.Data); err != nil {
		msgSpan.RecordError(err)
		mErr.Inc()
		obs.WithTrace(msgCtx, r.log).Error("handler error",
			zap.String("key", m.IdempotencyKey), zap.Int("kind", int(m.Kind)), zap.Error(err))
		return false
	}
	return true
}
