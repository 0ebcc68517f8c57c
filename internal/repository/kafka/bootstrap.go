package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BootstrapProducer makes sure the topic exists and returns a producer bound to it.
// A failed topic check is logged; the writer still auto-creates the topic on first write.
func BootstrapProducer(ctx context.Context, brokers []string, topic string, logger *zap.Logger) *Producer {
	if err := EnsureTopic(ctx, brokers, TopicSpec{
		Name:              topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
		MaxWait:           5 * time.Second,
	}, logger); err != nil {
		logger.Warn("ensure topic failed", zap.String("topic", topic), zap.Error(err))
	}
	return NewProducer(brokers, topic).WithLogger(logger)
}
