package retry

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Backoff interface {
	Next(attempt int) time.Duration
}

// ExpoJitter doubles Base per attempt up to Max, then spreads the result by
// ±Jitter (0.2 = ±20%).
type ExpoJitter struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

const maxDoublings = 32

func (b ExpoJitter) Next(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt && i < maxDoublings; i++ {
		if b.Max > 0 && d >= b.Max {
			break
		}
		d *= 2
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	if b.Jitter > 0 {
		d = time.Duration(float64(d) * (1 + b.Jitter*(2*rand.Float64()-1)))
	}
	return d
}

// Policy describes how Do repeats a failing operation. Zero fields fall back
// to one attempt, a 100ms..5s backoff and "any error is retryable".
type Policy struct {
	Name      string
	Attempts  int
	Backoff   Backoff
	Retryable func(error) bool
	OnAttempt func(attempt int, err error)
	OnExhaust func(lastErr error)
}

func (p Policy) withDefaults() Policy {
	if p.Name == "" {
		p.Name = "default"
	}
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Backoff == nil {
		p.Backoff = ExpoJitter{Base: 100 * time.Millisecond, Max: 5 * time.Second}
	}
	if p.Retryable == nil {
		p.Retryable = func(err error) bool { return err != nil }
	}
	return p
}

var (
	retryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retry_attempts_total",
		Help: "Calls made by retry.Do, final attempt included.",
	}, []string{"name"})
	retryExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retry_exhausted_total",
		Help: "retry.Do calls that gave up with an error.",
	}, []string{"name"})
	retryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retry_duration_seconds",
		Help:    "Wall time of retry.Do, waits included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"name"})
)

// Do calls fn until it succeeds or p gives up, and returns the last error.
// If ctx ends while waiting between attempts, ctx.Err() is returned.
func Do(ctx context.Context, fn func() error, p Policy) error {
	p = p.withDefaults()
	start := time.Now()
	defer func() { retryLatency.WithLabelValues(p.Name).Observe(time.Since(start).Seconds()) }()

	span := trace.SpanFromContext(ctx)
	for attempt := 0; ; attempt++ {
		err := fn()
		retryAttempts.WithLabelValues(p.Name).Inc()
		if err == nil {
			return nil
		}

		if p.OnAttempt != nil {
			p.OnAttempt(attempt, err)
		}
		span.AddEvent("retry.attempt", trace.WithAttributes(
			attribute.String("retry.name", p.Name),
			attribute.Int("retry.attempt", attempt+1),
			attribute.String("retry.error", err.Error()),
		))

		if !p.Retryable(err) || attempt+1 >= p.Attempts {
			retryExhausted.WithLabelValues(p.Name).Inc()
			if p.OnExhaust != nil {
				p.OnExhaust(err)
			}
			return err
		}
		if err := wait(ctx, p.Backoff.Next(attempt)); err != nil {
			return err
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
