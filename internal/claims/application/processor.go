package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"uppf-claims/internal/claims/application/events"
	claims "uppf-claims/internal/claims/domain"
	"uppf-claims/internal/config"
	"uppf-claims/internal/eventing"
	"uppf-claims/internal/observability/metrics"
	"uppf-claims/internal/platform/logger"
	reconciliation "uppf-claims/internal/reconciliation/domain"
	route "uppf-claims/internal/route/domain"
	trace "uppf-claims/internal/trace/domain"
)

// Deps are the collaborators of a Processor.
type Deps struct {
	Traces          TraceSource
	Reference       ReferenceData
	Volumes         VolumeSource
	Evidence        EvidenceStore
	Claims          ClaimRepository
	Reconciliations ReconciliationStore
	Sequence        Sequence
	Publisher       EventPublisher
}

func (d Deps) validate() error {
	switch {
	case d.Traces == nil:
		return errors.New("processor: nil trace source")
	case d.Reference == nil:
		return errors.New("processor: nil reference data")
	case d.Volumes == nil:
		return errors.New("processor: nil volume source")
	case d.Evidence == nil:
		return errors.New("processor: nil evidence store")
	case d.Claims == nil:
		return errors.New("processor: nil claim repository")
	case d.Reconciliations == nil:
		return errors.New("processor: nil reconciliation store")
	case d.Sequence == nil:
		return errors.New("processor: nil sequence")
	}
	return nil
}

// Outcome is everything one consignment produced.
type Outcome struct {
	Claim          *claims.Claim
	Validation     route.Validation
	Reconciliation reconciliation.Result
	Audit          ReconciliationAudit
}

// Processor turns one completed consignment into a claim.
type Processor struct {
	deps   Deps
	policy func() config.Policy
	log    *logger.Logger
	now    func() time.Time
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithPolicy supplies the business policy; it is read once per unit.
func WithPolicy(policy func() config.Policy) ProcessorOption {
	return func(p *Processor) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProcessor constructs a Processor.
func NewProcessor(deps Deps, log *logger.Logger, opts ...ProcessorOption) (*Processor, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	p := &Processor{
		deps:   deps,
		policy: config.DefaultPolicy,
		log:    logger.OrNop(log),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process runs trace validation, volume reconciliation and claim
// calculation for one consignment, in that order, and stores the results.
func (p *Processor) Process(ctx context.Context, c Consignment) (out *Outcome, err error) {
	began := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveUnit(result, time.Since(began))
	}()

	if c.ID == "" {
		return nil, claims.ErrEmptyConsignmentID
	}
	if _, err := p.deps.Claims.FindByConsignment(ctx, c.ID); err == nil {
		return nil, fmt.Errorf("consignment %s: %w", c.ID, claims.ErrClaimExists)
	} else if !errors.Is(err, claims.ErrClaimNotFound) {
		return nil, fmt.Errorf("consignment %s: find claim: %w", c.ID, err)
	}

	policy := p.policy()
	at := c.DeliveredAt
	if at.IsZero() {
		at = p.now()
	}
	at = at.UTC()

	point, err := p.deps.Reference.EqualisationPoint(ctx, c.RouteID, at)
	if err != nil {
		return nil, fmt.Errorf("consignment %s: equalisation point %s: %w", c.ID, c.RouteID, err)
	}
	tariffs, err := p.deps.Reference.Tariffs(ctx)
	if err != nil {
		return nil, fmt.Errorf("consignment %s: tariffs: %w", c.ID, err)
	}

	validation, err := p.validate(ctx, c, point, policy)
	if err != nil {
		return nil, err
	}
	result, audit, err := p.reconcile(ctx, c, policy)
	if err != nil {
		return nil, err
	}

	evidence, err := p.deps.Evidence.Evidence(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("consignment %s: evidence: %w", c.ID, err)
	}
	seq, err := p.deps.Sequence.Next(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("consignment %s: claim number: %w", c.ID, err)
	}
	number := claims.FormatClaimNumber(at, seq)

	claim, err := claims.Calculate(claims.Input{
		ClaimID:        uuid.NewString(),
		ClaimNumber:    number,
		ConsignmentID:  c.ID,
		VehicleID:      c.VehicleID,
		WindowID:       c.WindowID,
		Product:        c.Product,
		Point:          point,
		Validation:     validation,
		Reconciliation: result,
		Evidence:       evidence,
		Tariffs:        tariffs,
		At:             p.now(),
	}, policy.Claims)
	if err != nil {
		return nil, fmt.Errorf("consignment %s: %w", c.ID, err)
	}
	if err := p.deps.Claims.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("consignment %s: store claim: %w", c.ID, err)
	}

	metrics.IncClaimDisposition(string(claim.Disposition))
	p.log.Info("claim generated",
		"consignment_id", c.ID,
		"claim_number", claim.ClaimNumber,
		"disposition", claim.Disposition,
		"status", claim.Status,
		"total_amount", claim.TotalAmount.StringFixed(2),
		"risk_score", claim.RiskScore,
	)
	p.publish(ctx, events.ClaimGenerated{
		EventID:       eventing.NewEventID(),
		ClaimID:       claim.ID,
		ClaimNumber:   claim.ClaimNumber,
		ConsignmentID: c.ID,
		WindowID:      claim.WindowID,
		TotalAmount:   claim.TotalAmount.StringFixed(2),
		Disposition:   string(claim.Disposition),
		Status:        string(claim.Status),
		RiskScore:     claim.RiskScore,
		OccurredAt:    claim.CreatedAt,
	})

	return &Outcome{Claim: claim, Validation: validation, Reconciliation: result, Audit: audit}, nil
}

func (p *Processor) validate(ctx context.Context, c Consignment, point route.EqualisationPoint, policy config.Policy) (route.Validation, error) {
	var samples []trace.GeoSample
	tr, err := p.deps.Traces.Get(ctx, c.ID)
	switch {
	case errors.Is(err, trace.ErrTraceNotFound):
		p.log.Warn("no trace for consignment", "consignment_id", c.ID)
	case err != nil:
		return route.Validation{}, fmt.Errorf("consignment %s: trace: %w", c.ID, err)
	default:
		samples = tr.Samples
	}

	stops, err := p.deps.Reference.AuthorizedStops(ctx, c.RouteID)
	if err != nil && !errors.Is(err, claims.ErrReferenceNotFound) {
		return route.Validation{}, fmt.Errorf("consignment %s: authorized stops: %w", c.ID, err)
	}

	return route.Validate(route.Request{
		Planned:         c.PlannedRoute,
		Samples:         samples,
		Point:           point,
		AuthorizedStops: stops,
	}, policy.RoutePolicy(c.RouteID)), nil
}

func (p *Processor) reconcile(ctx context.Context, c Consignment, policy config.Policy) (reconciliation.Result, ReconciliationAudit, error) {
	triple, err := p.deps.Volumes.Volumes(ctx, c.ID)
	if err != nil {
		return nil, ReconciliationAudit{}, fmt.Errorf("consignment %s: volumes: %w", c.ID, err)
	}
	triple.ConsignmentID = c.ID

	factors, err := p.deps.Reference.ToleranceFactors(ctx, c.RouteID, c.Product)
	if err != nil && !errors.Is(err, claims.ErrReferenceNotFound) {
		return nil, ReconciliationAudit{}, fmt.Errorf("consignment %s: tolerance factors: %w", c.ID, err)
	}

	result := reconciliation.Reconcile(triple, factors, policy.Reconciliation)
	audit := ReconciliationAudit{
		ID:            uuid.NewString(),
		ConsignmentID: c.ID,
		Record:        reconciliation.ToRecord(result),
		CreatedAt:     p.now().UTC(),
	}
	if err := p.deps.Reconciliations.Insert(ctx, audit); err != nil {
		return nil, ReconciliationAudit{}, fmt.Errorf("consignment %s: store reconciliation: %w", c.ID, err)
	}

	details := result.Details()
	metrics.IncReconciliation(string(result.Status()))
	p.publish(ctx, events.ReconciliationCompleted{
		EventID:          eventing.NewEventID(),
		AuditID:          audit.ID,
		ConsignmentID:    c.ID,
		Status:           string(result.Status()),
		ReconciledLitres: details.ReconciledLitres,
		Confidence:       details.Confidence,
		Variances:        len(details.Variances),
		OccurredAt:       audit.CreatedAt,
	})
	return result, audit, nil
}

func (p *Processor) publish(ctx context.Context, event any) {
	if p.deps.Publisher == nil {
		return
	}
	if err := p.deps.Publisher.Publish(ctx, event); err != nil {
		p.log.Error("publish event failed", "event_type", eventing.EventType(event), "error", err)
	}
}
