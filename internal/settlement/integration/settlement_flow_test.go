package integration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claimsapp "uppf-claims/internal/claims/application"
	claims "uppf-claims/internal/claims/domain"
	claimsmemory "uppf-claims/internal/claims/infrastructure/memory"
	"uppf-claims/internal/eventing"
	settlementapp "uppf-claims/internal/settlement/application"
	"uppf-claims/internal/settlement/application/events"
	settlement "uppf-claims/internal/settlement/domain"
	"uppf-claims/internal/settlement/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type eventRecorder struct {
	mu     sync.Mutex
	events []any
}

func (r *eventRecorder) handle(_ context.Context, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func approvedClaim(id string, amount string, submitted time.Time) *claims.Claim {
	return &claims.Claim{
		ID:                 id,
		ClaimNumber:        "UPPF-" + id,
		ConsignmentID:      "CONS-" + id,
		WindowID:           "2026-03",
		Status:             claims.StatusApproved,
		TotalAmount:        decimal.RequireFromString(amount),
		EvidenceScore:      90,
		GPSValidated:       true,
		GPSConfidence:      0.9,
		ThreeWayReconciled: true,
		SubmittedAt:        &submitted,
	}
}

func TestSettlementFlow(t *testing.T) {
	ctx := context.Background()
	deadline := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	now := deadline.Add(10 * 24 * time.Hour)

	claimRepo := claimsmemory.NewClaimRepository()
	require.NoError(t, claimRepo.Create(ctx, approvedClaim("a", "1000", deadline.Add(-48*time.Hour))))
	require.NoError(t, claimRepo.Create(ctx, approvedClaim("b", "3000", deadline.Add(-24*time.Hour))))
	pending := approvedClaim("c", "500", deadline)
	pending.Status = claims.StatusSubmitted
	require.NoError(t, claimRepo.Create(ctx, pending))

	bus := eventing.NewInMemoryBus()
	recorder := &eventRecorder{}
	bus.Subscribe(eventing.EventTypeOf[events.SettlementCreated](), recorder.handle)
	bus.Subscribe(eventing.EventTypeOf[events.SettlementReconciled](), recorder.handle)

	clock := fixedClock{now: now}
	lifecycle, err := claimsapp.NewLifecycle(claimRepo, bus, nil, clock.Now)
	require.NoError(t, err)
	repo := memory.NewSettlementRepository()
	service, err := settlementapp.NewService(repo, claimRepo, lifecycle, bus, nil, clock, nil)
	require.NoError(t, err)

	window := settlement.Window{ID: "2026-03", SubmissionDeadline: deadline}
	st, rejections, err := service.Settle(ctx, window)
	require.NoError(t, err)
	assert.Empty(t, rejections)
	assert.Equal(t, "UPPF-SETTLEMENT-202604-0001", st.Reference)
	assert.Equal(t, []string{"a", "b"}, st.ClaimIDs())
	assert.Equal(t, settlement.StatusPending, st.Status)

	for _, id := range []string{"a", "b"} {
		c, err := claimRepo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, claims.StatusSettled, c.Status)
	}

	_, _, err = service.Settle(ctx, window)
	assert.ErrorIs(t, err, settlement.ErrSettlementExists)

	st, err = service.StartProcessing(ctx, st.ID, "PAY-001")
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusProcessing, st.Status)

	short := st.NetAmount.Sub(decimal.NewFromInt(100))
	st, err = service.ReconcilePayment(ctx, st.ID, short)
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusVarianceDetected, st.Status)
	require.NotNil(t, st.Analysis)

	_, err = service.ReconcilePayment(ctx, st.ID, short)
	assert.ErrorIs(t, err, settlement.ErrAlreadyReconciled)

	dash, err := service.Dashboard(ctx)
	require.NoError(t, err)
	assert.True(t, dash.TotalSubmitted.Equal(decimal.NewFromInt(4500)), dash.TotalSubmitted.String())
	assert.True(t, dash.TotalPaid.Equal(short), dash.TotalPaid.String())
	assert.True(t, dash.TotalPending.Equal(decimal.NewFromInt(500)))
	assert.Len(t, dash.ShortPays, 2)
	assert.Equal(t, 1, dash.Aging.Under30)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.events, 2)
	assert.IsType(t, events.SettlementCreated{}, recorder.events[0])
	reconciled, ok := recorder.events[1].(events.SettlementReconciled)
	require.True(t, ok)
	assert.Equal(t, string(settlement.StatusVarianceDetected), reconciled.Status)
}

func TestSettleWindowWithoutApprovedClaims(t *testing.T) {
	ctx := context.Background()
	claimRepo := claimsmemory.NewClaimRepository()
	lifecycle, err := claimsapp.NewLifecycle(claimRepo, nil, nil, nil)
	require.NoError(t, err)
	service, err := settlementapp.NewService(memory.NewSettlementRepository(), claimRepo, lifecycle, nil, nil, nil, nil)
	require.NoError(t, err)

	_, _, err = service.Settle(ctx, settlement.Window{ID: "empty"})
	assert.ErrorIs(t, err, settlement.ErrNoApprovedClaims)
	_, _, err = service.Settle(ctx, settlement.Window{})
	assert.ErrorIs(t, err, settlement.ErrEmptyWindowID)
}

func TestDashboardExactPaymentHasNoShortPays(t *testing.T) {
	ctx := context.Background()
	deadline := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	clock := fixedClock{now: deadline.Add(24 * time.Hour)}

	claimRepo := claimsmemory.NewClaimRepository()
	require.NoError(t, claimRepo.Create(ctx, approvedClaim("a", "1000", deadline)))
	require.NoError(t, claimRepo.Create(ctx, approvedClaim("b", "2500", deadline)))
	lifecycle, err := claimsapp.NewLifecycle(claimRepo, nil, nil, clock.Now)
	require.NoError(t, err)
	service, err := settlementapp.NewService(memory.NewSettlementRepository(), claimRepo, lifecycle, nil, nil, clock, nil)
	require.NoError(t, err)

	st, _, err := service.Settle(ctx, settlement.Window{ID: "2026-03", SubmissionDeadline: deadline})
	require.NoError(t, err)
	assert.False(t, st.NetAmount.Equal(st.TotalClaimed), "fees and bonuses move net away from gross")

	st, err = service.ReconcilePayment(ctx, st.ID, st.NetAmount)
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusReconciled, st.Status)

	dash, err := service.Dashboard(ctx)
	require.NoError(t, err)
	assert.Empty(t, dash.ShortPays)
	assert.True(t, dash.ShortPayAmount.IsZero(), dash.ShortPayAmount.String())
	assert.True(t, dash.TotalPaid.Equal(st.NetAmount), dash.TotalPaid.String())
	assert.True(t, dash.TotalSubmitted.Equal(decimal.NewFromInt(3500)), dash.TotalSubmitted.String())
	assert.True(t, dash.TotalPending.IsZero())
}

// flakyRepository fails the first Update of one claim.
type flakyRepository struct {
	*claimsmemory.ClaimRepository
	failID string
	failed bool
}

func (r *flakyRepository) Update(ctx context.Context, c *claims.Claim, from claims.Status) error {
	if c.ID == r.failID && !r.failed {
		r.failed = true
		return claims.ErrStaleClaim
	}
	return r.ClaimRepository.Update(ctx, c, from)
}

func TestSettleRerunFinishesMarkingClaims(t *testing.T) {
	ctx := context.Background()
	deadline := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	clock := fixedClock{now: deadline}

	claimRepo := &flakyRepository{ClaimRepository: claimsmemory.NewClaimRepository(), failID: "b"}
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, claimRepo.Create(ctx, approvedClaim(id, "1000", deadline)))
	}
	lifecycle, err := claimsapp.NewLifecycle(claimRepo, nil, nil, clock.Now)
	require.NoError(t, err)
	service, err := settlementapp.NewService(memory.NewSettlementRepository(), claimRepo, lifecycle, nil, nil, clock, nil)
	require.NoError(t, err)
	window := settlement.Window{ID: "2026-03", SubmissionDeadline: deadline}

	st, _, err := service.Settle(ctx, window)
	assert.ErrorIs(t, err, claims.ErrStaleClaim)
	require.NotNil(t, st)
	status := func(id string) claims.Status {
		c, err := claimRepo.Get(ctx, id)
		require.NoError(t, err)
		return c.Status
	}
	assert.Equal(t, claims.StatusSettled, status("a"))
	assert.Equal(t, claims.StatusApproved, status("b"))
	assert.Equal(t, claims.StatusSettled, status("c"))

	again, _, err := service.Settle(ctx, window)
	assert.ErrorIs(t, err, settlement.ErrSettlementExists)
	require.NotNil(t, again)
	assert.Equal(t, st.Reference, again.Reference)
	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, claims.StatusSettled, status(id), id)
	}
}
