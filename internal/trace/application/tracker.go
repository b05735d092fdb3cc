package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"uppf-claims/internal/eventing"
	"uppf-claims/internal/observability/metrics"
	"uppf-claims/internal/platform/logger"
	"uppf-claims/internal/trace/application/events"
	trace "uppf-claims/internal/trace/domain"
)

// TraceStore persists traces. Get returns trace.ErrTraceNotFound for an
// unknown consignment.
type TraceStore interface {
	Get(ctx context.Context, consignmentID string) (*trace.Trace, error)
	Save(ctx context.Context, t *trace.Trace) error
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Tracker records samples of in-transit traces and runs the live checks.
type Tracker struct {
	store     TraceStore
	publisher EventPublisher
	policy    func() trace.LivePolicy
	log       *logger.Logger
	now       func() time.Time

	mu sync.Mutex
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTrackerClock overrides the clock.
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLivePolicy supplies the live-check policy per call.
func WithLivePolicy(policy func() trace.LivePolicy) TrackerOption {
	return func(t *Tracker) {
		if policy != nil {
			t.policy = policy
		}
	}
}

// NewTracker constructs a Tracker. A nil publisher drops events.
func NewTracker(store TraceStore, publisher EventPublisher, log *logger.Logger, opts ...TrackerOption) (*Tracker, error) {
	if store == nil {
		return nil, errors.New("tracker: nil store")
	}
	t := &Tracker{
		store:     store,
		publisher: publisher,
		policy:    trace.DefaultLivePolicy,
		log:       logger.OrNop(log),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Append adds a sample to the consignment's trace, creating the trace on
// the first sample, and returns any live violations it raised.
func (t *Tracker) Append(ctx context.Context, consignmentID, vehicleID string, sample trace.GeoSample) ([]trace.LiveViolation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, err := t.store.Get(ctx, consignmentID)
	switch {
	case errors.Is(err, trace.ErrTraceNotFound):
		tr, err = trace.NewTrace(consignmentID, vehicleID)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case vehicleID != "" && tr.VehicleID != vehicleID:
		return nil, fmt.Errorf("tracker: consignment %s is carried by %s, not %s", consignmentID, tr.VehicleID, vehicleID)
	}

	sample.Timestamp = sample.Timestamp.UTC()
	if err := tr.Append(sample); err != nil {
		return nil, err
	}
	if err := t.store.Save(ctx, tr); err != nil {
		return nil, err
	}

	policy := t.policy()
	violations := trace.CheckLive(tr.Last(policy.StopWindow+1), policy)
	for _, v := range violations {
		metrics.IncLiveViolation(string(v.Kind))
		t.log.Warn("live violation",
			"consignment_id", consignmentID,
			"vehicle_id", tr.VehicleID,
			"kind", v.Kind,
			"value", v.Value,
		)
		t.publish(ctx, events.LiveViolationDetected{
			EventID:       eventing.NewEventID(),
			ConsignmentID: consignmentID,
			VehicleID:     tr.VehicleID,
			Kind:          string(v.Kind),
			Latitude:      v.Location.Latitude,
			Longitude:     v.Location.Longitude,
			Value:         v.Value,
			Description:   v.Description,
			OccurredAt:    v.At,
		})
	}
	return violations, nil
}

// Complete freezes the consignment's trace. Later appends fail with
// trace.ErrTraceCompleted.
func (t *Tracker) Complete(ctx context.Context, consignmentID string) (*trace.Trace, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, err := t.store.Get(ctx, consignmentID)
	if err != nil {
		return nil, err
	}
	if tr.Completed {
		return tr, nil
	}
	tr.Complete(t.now())
	if err := t.store.Save(ctx, tr); err != nil {
		return nil, err
	}
	t.log.Info("trace completed", "consignment_id", consignmentID, "samples", len(tr.Samples))
	t.publish(ctx, events.TraceCompleted{
		EventID:       eventing.NewEventID(),
		ConsignmentID: consignmentID,
		VehicleID:     tr.VehicleID,
		Samples:       len(tr.Samples),
		OccurredAt:    *tr.CompletedAt,
	})
	return tr, nil
}

func (t *Tracker) publish(ctx context.Context, event any) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.Publish(ctx, event); err != nil {
		t.log.Error("publish event failed", "event_type", eventing.EventType(event), "error", err)
	}
}
