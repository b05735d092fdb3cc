package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	claims "uppf-claims/internal/claims/domain"
	"uppf-claims/internal/eventing"
	"uppf-claims/internal/observability/metrics"
	"uppf-claims/internal/platform/logger"
	"uppf-claims/internal/settlement/application/events"
	settlement "uppf-claims/internal/settlement/domain"
)

// ClaimSource lists claims by status. An empty windowID matches every
// window.
type ClaimSource interface {
	ListByStatus(ctx context.Context, status claims.Status, windowID string) ([]*claims.Claim, error)
}

// ClaimSettler moves settled claims to their terminal status.
type ClaimSettler interface {
	MarkSettled(ctx context.Context, claimIDs []string, reference string) error
}

// EventPublisher publishes settlement events.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service handles settlement use cases.
type Service struct {
	repo      settlement.Repository
	claims    ClaimSource
	settler   ClaimSettler
	publisher EventPublisher
	policy    func() settlement.Policy
	clock     Clock
	log       *logger.Logger
}

// NewService constructs the service. publisher may be nil; a nil policy
// uses the defaults and a nil clock the system clock.
func NewService(
	repo settlement.Repository,
	source ClaimSource,
	settler ClaimSettler,
	publisher EventPublisher,
	policy func() settlement.Policy,
	clock Clock,
	log *logger.Logger,
) (*Service, error) {
	if repo == nil {
		return nil, errors.New("settlement service: nil repository")
	}
	if source == nil {
		return nil, errors.New("settlement service: nil claim source")
	}
	if settler == nil {
		return nil, errors.New("settlement service: nil claim settler")
	}
	if policy == nil {
		policy = settlement.DefaultPolicy
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{
		repo:      repo,
		claims:    source,
		settler:   settler,
		publisher: publisher,
		policy:    policy,
		clock:     clock,
		log:       logger.OrNop(log),
	}, nil
}

// Settle settles the approved claims of a window. A window is settled at
// most once; the included claims move to settled. Running it again for a
// settled window finishes marking any claims a previous run left approved
// and then reports ErrSettlementExists.
func (s *Service) Settle(ctx context.Context, window settlement.Window) (out *settlement.Settlement, rejections []settlement.Rejection, err error) {
	defer func() {
		if err != nil {
			metrics.ObserveSettlement(metrics.ResultError, 0)
		}
	}()

	if window.ID == "" {
		return nil, nil, settlement.ErrEmptyWindowID
	}
	existing, err := s.repo.FindByWindow(ctx, window.ID)
	switch {
	case err == nil && existing != nil:
		if err := s.settler.MarkSettled(ctx, existing.ClaimIDs(), existing.Reference); err != nil {
			return existing, nil, fmt.Errorf("settlement %s: mark claims settled: %w", existing.Reference, err)
		}
		return existing, nil, fmt.Errorf("window %s: %w", window.ID, settlement.ErrSettlementExists)
	case err != nil && !errors.Is(err, settlement.ErrSettlementNotFound):
		return nil, nil, err
	}

	approved, err := s.claims.ListByStatus(ctx, claims.StatusApproved, window.ID)
	if err != nil {
		return nil, nil, err
	}
	lines := make([]settlement.ClaimLine, 0, len(approved))
	for _, c := range approved {
		lines = append(lines, settlement.LineFromClaim(c))
	}

	now := s.clock.Now().UTC()
	seq, err := s.repo.NextSequence(ctx, now.Format("200601"))
	if err != nil {
		return nil, nil, err
	}
	out, rejections, err = settlement.Settle(settlement.Request{
		ID:        uuid.NewString(),
		Reference: settlement.FormatReference(now, seq),
		Window:    window,
		Lines:     lines,
		At:        now,
	}, s.policy())
	for _, r := range rejections {
		s.log.Warn("claim rejected from settlement", "window_id", window.ID, "claim_id", r.ClaimID, "rule", r.Rule)
	}
	if err != nil {
		return nil, rejections, err
	}

	if err := s.repo.Save(ctx, out); err != nil {
		return nil, rejections, err
	}
	if err := s.settler.MarkSettled(ctx, out.ClaimIDs(), out.Reference); err != nil {
		return out, rejections, fmt.Errorf("settlement %s: mark claims settled: %w", out.Reference, err)
	}

	net, _ := out.NetAmount.Float64()
	metrics.ObserveSettlement(metrics.ResultSuccess, net)
	s.log.Info("settlement created",
		"settlement_id", out.ID,
		"reference", out.Reference,
		"window_id", window.ID,
		"claims", len(out.Lines),
		"rejected", len(rejections),
		"net_amount", out.NetAmount.StringFixed(2),
	)
	s.publish(ctx, events.SettlementCreated{
		EventID:      eventing.NewEventID(),
		SettlementID: out.ID,
		Reference:    out.Reference,
		WindowID:     window.ID,
		Claims:       len(out.Lines),
		Rejected:     len(rejections),
		NetAmount:    out.NetAmount.StringFixed(2),
		OccurredAt:   now,
	})
	return out, rejections, nil
}

// StartProcessing records the payment reference of a pending settlement.
func (s *Service) StartProcessing(ctx context.Context, settlementID, paymentRef string) (*settlement.Settlement, error) {
	st, err := s.repo.Get(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if err := st.StartProcessing(paymentRef, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	s.log.Info("settlement processing", "settlement_id", st.ID, "payment_ref", paymentRef)
	return st, nil
}

// ReconcilePayment records the amount actually received for a settlement.
func (s *Service) ReconcilePayment(ctx context.Context, settlementID string, actual decimal.Decimal) (*settlement.Settlement, error) {
	st, err := s.repo.Get(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if err := st.ReconcilePayment(actual, s.clock.Now(), s.policy()); err != nil {
		metrics.IncPaymentReconciliation(metrics.ResultError)
		return nil, err
	}
	if err := s.repo.Update(ctx, st); err != nil {
		metrics.IncPaymentReconciliation(metrics.ResultError)
		return nil, err
	}

	metrics.IncPaymentReconciliation(string(st.Status))
	s.log.Info("settlement payment reconciled",
		"settlement_id", st.ID,
		"status", st.Status,
		"expected", st.NetAmount.StringFixed(2),
		"actual", actual.StringFixed(2),
		"variance_pct", st.VariancePct,
	)
	s.publish(ctx, events.SettlementReconciled{
		EventID:      eventing.NewEventID(),
		SettlementID: st.ID,
		Reference:    st.Reference,
		Status:       string(st.Status),
		Expected:     st.NetAmount.StringFixed(2),
		Actual:       actual.StringFixed(2),
		VariancePct:  st.VariancePct,
		OccurredAt:   *st.ReconciledAt,
	})
	return st, nil
}

// Dashboard summarises every submitted claim against what has been paid.
// Open claims are due their total amount; settled claims are due their
// settlement line net and count as paid once the payment is recorded.
func (s *Service) Dashboard(ctx context.Context) (settlement.Dashboard, error) {
	var items []settlement.Receivable
	for _, status := range []claims.Status{claims.StatusSubmitted, claims.StatusUnderReview, claims.StatusApproved} {
		open, err := s.claims.ListByStatus(ctx, status, "")
		if err != nil {
			return settlement.Dashboard{}, err
		}
		for _, c := range open {
			items = append(items, settlement.Receivable{ClaimID: c.ID, AmountDue: c.TotalAmount, SubmittedAt: c.SubmittedAt})
		}
	}

	settled, err := s.claims.ListByStatus(ctx, claims.StatusSettled, "")
	if err != nil {
		return settlement.Dashboard{}, err
	}
	windows := make(map[string]*settlement.Settlement)
	for _, c := range settled {
		st, ok := windows[c.WindowID]
		if !ok {
			st, err = s.repo.FindByWindow(ctx, c.WindowID)
			switch {
			case errors.Is(err, settlement.ErrSettlementNotFound):
				st = nil
			case err != nil:
				return settlement.Dashboard{}, err
			}
			windows[c.WindowID] = st
		}
		items = append(items, settledReceivable(c, st))
	}
	return settlement.VarianceDashboard(items, s.clock.Now()), nil
}

// settledReceivable measures a settled claim by the net of its settlement
// line, the same base the payment allocation uses.
func settledReceivable(c *claims.Claim, st *settlement.Settlement) settlement.Receivable {
	item := settlement.Receivable{ClaimID: c.ID, Claimed: c.TotalAmount, AmountDue: c.TotalAmount, SubmittedAt: c.SubmittedAt}
	if st == nil {
		return item
	}
	for _, l := range st.Lines {
		if l.ClaimID == c.ID {
			item.AmountDue = l.Net
			break
		}
	}
	for _, a := range st.Allocations {
		if a.ClaimID == c.ID {
			amount := a.Amount
			item.AmountPaid = &amount
			break
		}
	}
	return item
}

func (s *Service) publish(ctx context.Context, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error("publish event failed", "event_type", eventing.EventType(event), "error", err)
	}
}
