package eventing

import (
	"context"

	"uppf-claims/internal/platform/logger"
)

// LoggingPublisher logs every event and forwards it to next when set.
type LoggingPublisher struct {
	next   Bus
	logger *logger.Logger
}

// NewLoggingPublisher constructs a logging publisher.
func NewLoggingPublisher(next Bus, log *logger.Logger) *LoggingPublisher {
	return &LoggingPublisher{next: next, logger: logger.OrNop(log)}
}

// Publish logs the event type and aggregate, then forwards it.
func (p *LoggingPublisher) Publish(ctx context.Context, event any) error {
	p.logger.Info("domain event",
		"event_type", EventType(event),
		"aggregate_id", extractStringField(event, aggregateFields...),
		"correlation_id", MetaFromContext(ctx).CorrelationID,
	)
	if p.next == nil {
		return nil
	}
	return p.next.Publish(ctx, event)
}
