package main

import (
	"context"

	"go.uber.org/zap"

	config "github.com/NordCoder/homelab/internal/config/dashboard"
	"github.com/NordCoder/homelab/internal/obs/retry"
	outboxrunner "github.com/NordCoder/homelab/internal/outbox"
	kafkax "github.com/NordCoder/homelab/internal/repository/kafka"
)

// startEvents runs the outbox relay when status-change events are enabled.
// The returned stop waits for the workers and closes the producer.
func startEvents(ctx context.Context, cfg *config.Config, st *storage, logger *zap.Logger) (stop func()) {
	if !cfg.Events.Enable {
		return func() {}
	}

	producer := kafkax.BootstrapProducer(ctx, cfg.Events.Brokers, cfg.Events.Topic, logger)
	pub := kafkax.NewStatusEventsKafka(producer)

	runner := outboxrunner.NewOutboxRunner(
		logger,
		st.outbox,
		outboxrunner.MakeGlobalOutboxHandler(pub, retry.PublishPolicy(cfg.Events.AsPublishConfig(), logger)),
		outboxrunner.Config{
			Workers:       cfg.Events.Workers,
			BatchSize:     cfg.Events.BatchSize,
			WaitTime:      cfg.Events.PollInterval,
			InProgressTTL: cfg.Events.InProgressTTL,
		},
	)

	runCtx, cancel := context.WithCancel(ctx)
	runner.Start(runCtx)
	logger.Info("status events enabled",
		zap.Strings("brokers", cfg.Events.Brokers), zap.String("topic", cfg.Events.Topic))

	return func() {
		cancel()
		runner.Wait()
		if err := producer.Close(); err != nil {
			logger.Warn("kafka producer close", zap.Error(err))
		}
	}
}
