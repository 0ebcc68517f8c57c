package kafka

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/NordCoder/homelab/internal/domain/events"
)

// StatusEventsKafka publishes service status changes keyed by service id,
// so every change of one service lands in the same partition.
type StatusEventsKafka struct {
	p *Producer
}

func NewStatusEventsKafka(p *Producer) *StatusEventsKafka { return &StatusEventsKafka{p: p} }

var _ events.StatusEvents = (*StatusEventsKafka)(nil)

func (e *StatusEventsKafka) PublishStatusChanged(ctx context.Context, ev events.StatusChanged) error {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("service.id", ev.ServiceID),
		attribute.Int64("user.id", ev.OwnerID),
		attribute.String("service.status.old", ev.Old),
		attribute.String("service.status.new", ev.New),
	)
	return e.p.PublishJSON(ctx, KeyFromInt64(ev.ServiceID), ev, statusHeaders(ev)...)
}
