package eventing

import (
	"context"
	"errors"

	"uppf-claims/internal/platform/logger"
)

// OutboxRecord is a pending outbox entry.
type OutboxRecord struct {
	ID       string
	Envelope Envelope
}

// OutboxStore persists envelopes until they are relayed.
type OutboxStore interface {
	Insert(ctx context.Context, env Envelope) (string, error)
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// Bus is the in-process publish side used by the relay.
type Bus interface {
	Publish(ctx context.Context, event any) error
}

// OutboxPublisher writes events to the outbox and relays pending records
// to an in-process bus.
type OutboxPublisher struct {
	outbox   OutboxStore
	bus      Bus
	registry *Registry
	logger   *logger.Logger
}

// NewOutboxPublisher constructs an outbox publisher. bus may be nil, in
// which case records stay pending for an external relay.
func NewOutboxPublisher(outbox OutboxStore, bus Bus, registry *Registry, log *logger.Logger) (*OutboxPublisher, error) {
	if outbox == nil {
		return nil, errors.New("eventing: nil outbox")
	}
	if bus != nil && registry == nil {
		return nil, errors.New("eventing: relay needs a registry")
	}
	return &OutboxPublisher{outbox: outbox, bus: bus, registry: registry, logger: logger.OrNop(log)}, nil
}

// Publish writes the event to the outbox and triggers a relay pass.
func (p *OutboxPublisher) Publish(ctx context.Context, event any) error {
	env, err := BuildEnvelope(event, MetaFromContext(ctx))
	if err != nil {
		return err
	}
	if _, err := p.outbox.Insert(ctx, env); err != nil {
		return err
	}
	if p.bus != nil {
		if _, err := p.Relay(ctx, 1); err != nil {
			p.logger.Warn("outbox relay failed", "event_type", env.EventType, "error", err)
		}
	}
	return nil
}

// Relay delivers up to limit pending records to the bus and returns how
// many were delivered. Undecodable or rejected records are marked failed.
func (p *OutboxPublisher) Relay(ctx context.Context, limit int) (int, error) {
	if p.bus == nil {
		return 0, nil
	}
	if limit <= 0 {
		limit = 50
	}
	records, err := p.outbox.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}

	var sent int
	for _, record := range records {
		env := record.Envelope
		payload, err := p.registry.DecodePayload(env)
		if err == nil {
			err = p.bus.Publish(WithEnvelope(ctx, env), payload)
		}
		if err != nil {
			p.logger.Warn("outbox record failed", "outbox_id", record.ID, "event_type", env.EventType, "error", err)
			_ = p.outbox.MarkFailed(ctx, record.ID)
			continue
		}
		if err := p.outbox.MarkSent(ctx, record.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
