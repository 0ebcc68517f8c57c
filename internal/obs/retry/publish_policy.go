package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// PublishConfig tunes how the status-event relay retries a broker write.
type PublishConfig struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
	Jitter   float64
}

// PublishPolicy retries status-event publishes with capped exponential backoff.
// A canceled context is never retried.
func PublishPolicy(cfg PublishConfig, log *zap.Logger) Policy {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "retry.publish"))
	return Policy{
		Name:     "status_event_publish",
		Attempts: cfg.Attempts,
		Backoff:  ExpoJitter{Base: cfg.Base, Max: cfg.Max, Jitter: cfg.Jitter},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnAttempt: func(i int, err error) {
			log.Warn("status event publish failed", zap.Int("attempt", i+1), zap.Int("of", cfg.Attempts), zap.Error(err))
		},
		OnExhaust: func(err error) {
			if !errors.Is(err, context.Canceled) {
				log.Error("status event publish gave up, row is retried after in_progress_ttl", zap.Error(err))
			}
		},
	}
}
