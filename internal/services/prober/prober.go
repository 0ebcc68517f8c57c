// Package prober checks whether a service URL answers.
//
// A probe is one GET with a fixed timeout. Exactly 200 is Running, any other
// received code N is "Error N", and every transport failure is Down.
// There are no retries.
package prober

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/NordCoder/homelab/internal/domain/service"
	"github.com/NordCoder/homelab/internal/obs"
)

const (
	DefaultTimeout = 3 * time.Second

	maxDrainBytes = 64 << 10
)

var (
	probeResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "probe_results_total",
		Help: "Probe outcomes by class (running, error, down).",
	}, []string{"class"})
	probeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "probe_duration_seconds",
		Help:    "Time spent on a single probe.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 3, 5},
	})
)

type Prober struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	log       *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Prober{
		client:    NewHTTPClient(cfg),
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		log:       obs.Component(log, "prober"),
	}
}

// Probe never fails: every error is folded into service.StatusDown.
func (p *Prober) Probe(ctx context.Context, url string) service.Status {
	start := time.Now()
	status := p.probe(ctx, url)
	probeDuration.Observe(time.Since(start).Seconds())
	probeResults.WithLabelValues(status.Class()).Inc()
	return status
}

func (p *Prober) probe(ctx context.Context, url string) service.Status {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		obs.WithTrace(ctx, p.log).Debug("bad probe url", zap.String("url", url), zap.Error(err))
		return service.StatusDown
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		obs.WithTrace(ctx, p.log).Debug("probe failed", zap.String("url", url), zap.Error(err))
		return service.StatusDown
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return service.FromHTTPCode(resp.StatusCode)
}
