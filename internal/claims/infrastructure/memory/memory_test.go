package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uppf-claims/internal/claims/application"
	claims "uppf-claims/internal/claims/domain"
	"uppf-claims/internal/claims/infrastructure/memory"
	reconciliation "uppf-claims/internal/reconciliation/domain"
	route "uppf-claims/internal/route/domain"
	trace "uppf-claims/internal/trace/domain"
	tracememory "uppf-claims/internal/trace/infrastructure/memory"
)

var day = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestClaimRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewClaimRepository()

	c := &claims.Claim{ID: "c-1", ClaimNumber: "UPPF-20260302-000002", ConsignmentID: "CONS-1", WindowID: "W1", Status: claims.StatusReadyToSubmit}
	require.NoError(t, repo.Create(ctx, c))
	assert.ErrorIs(t, repo.Create(ctx, &claims.Claim{ID: "c-2", ConsignmentID: "CONS-1"}), claims.ErrClaimExists)

	got, err := repo.FindByConsignment(ctx, "CONS-1")
	require.NoError(t, err)
	got.Status = claims.StatusCancelled
	stored, err := repo.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, claims.StatusReadyToSubmit, stored.Status, "callers get copies")

	require.NoError(t, stored.Submit("SUB-1", day))
	require.NoError(t, repo.Update(ctx, stored, claims.StatusReadyToSubmit))
	assert.ErrorIs(t, repo.Update(ctx, stored, claims.StatusReadyToSubmit), claims.ErrStaleClaim)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, claims.ErrClaimNotFound)

	require.NoError(t, repo.Create(ctx, &claims.Claim{ID: "c-3", ClaimNumber: "UPPF-20260302-000001", ConsignmentID: "CONS-3", WindowID: "W2", Status: claims.StatusSubmitted}))
	all, err := repo.ListByStatus(ctx, claims.StatusSubmitted, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "c-3", all[0].ID)
	w1, err := repo.ListByStatus(ctx, claims.StatusSubmitted, "W1")
	require.NoError(t, err)
	require.Len(t, w1, 1)
	assert.Equal(t, "c-1", w1[0].ID)
}

func TestSequenceIsPerDay(t *testing.T) {
	ctx := context.Background()
	seq := memory.NewSequence()
	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := seq.Next(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestReferenceDataPicksLatestValidPoint(t *testing.T) {
	ctx := context.Background()
	ref := memory.NewReferenceData(nil)
	ref.PutPoint(route.EqualisationPoint{RouteID: "R1", ThresholdKm: 100, Active: true, EffectiveFrom: day.AddDate(0, -6, 0)})
	ref.PutPoint(route.EqualisationPoint{RouteID: "R1", ThresholdKm: 120, Active: true, EffectiveFrom: day.AddDate(0, -1, 0)})
	ref.PutPoint(route.EqualisationPoint{RouteID: "R1", ThresholdKm: 140, Active: true, EffectiveFrom: day.AddDate(0, 1, 0)})

	p, err := ref.EqualisationPoint(ctx, "R1", day)
	require.NoError(t, err)
	assert.Equal(t, 120.0, p.ThresholdKm)

	_, err = ref.EqualisationPoint(ctx, "R2", day)
	assert.ErrorIs(t, err, claims.ErrReferenceNotFound)
	_, err = ref.AuthorizedStops(ctx, "R1")
	assert.ErrorIs(t, err, claims.ErrReferenceNotFound)

	tariffs, err := ref.Tariffs(ctx)
	require.NoError(t, err)
	assert.Equal(t, claims.DefaultTariffs(), tariffs)
}

func TestReconciliationStoreIsInsertOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.NewReconciliationStore()
	audit := application.ReconciliationAudit{ID: "a-1", ConsignmentID: "CONS-1"}
	require.NoError(t, store.Insert(ctx, audit))
	assert.Error(t, store.Insert(ctx, audit))
	assert.Error(t, store.Insert(ctx, application.ReconciliationAudit{}))

	got, err := store.ListByConsignment(ctx, "CONS-1")
	require.NoError(t, err)
	assert.Equal(t, []application.ReconciliationAudit{audit}, got)
}

func ptr(v float64) *float64 { return &v }

// TestPipelineEndToEnd drives a consignment through the processor and the
// batch using the in-memory adapters only.
func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewClaimRepository()
	consignments, err := memory.NewConsignmentStore(repo)
	require.NoError(t, err)
	traces := tracememory.NewTraceStore()
	ref := memory.NewReferenceData(nil)
	ref.PutPoint(route.EqualisationPoint{RouteID: "ACC-KSI", ThresholdKm: 5, RoadCategory: route.RoadUrban, Active: true, EffectiveFrom: day.AddDate(-1, 0, 0)})

	samples := make([]trace.GeoSample, 12)
	for i := range samples {
		samples[i] = trace.GeoSample{
			GeoPoint:  trace.GeoPoint{Latitude: 5.60 + float64(i)*0.009, Longitude: -0.19},
			Timestamp: day.Add(time.Duration(i-12) * time.Minute),
		}
	}
	require.NoError(t, traces.Save(ctx, &trace.Trace{ConsignmentID: "CONS-1", VehicleID: "GT-1", Samples: samples, Completed: true}))

	require.NoError(t, consignments.Put(memory.ConsignmentRecord{
		Consignment: application.Consignment{
			ID:           "CONS-1",
			VehicleID:    "GT-1",
			RouteID:      "ACC-KSI",
			WindowID:     "W1",
			Product:      claims.ProductPMS,
			PlannedRoute: []trace.GeoPoint{samples[0].GeoPoint, samples[11].GeoPoint},
			DeliveredAt:  day,
		},
		Volumes: reconciliation.Triple{
			Depot:       reconciliation.VolumeRecord{Party: reconciliation.PartyDepot, Litres: 5000, TemperatureC: 25, DocumentRef: "DLR-001", APIGravity: ptr(60)},
			Transporter: reconciliation.VolumeRecord{Party: reconciliation.PartyTransporter, Litres: 4985, TemperatureC: 27, DocumentRef: "WB-001"},
			Station:     reconciliation.VolumeRecord{Party: reconciliation.PartyStation, Litres: 4980, TemperatureC: 28, DocumentRef: "SRR-001"},
		},
		Evidence: claims.Evidence{Waybill: true, GPSTrace: true, GoodsReceivedNote: true, TankDips: true, Weighbridge: true, SealVerification: true},
	}))
	require.NoError(t, consignments.Put(memory.ConsignmentRecord{
		Consignment: application.Consignment{ID: "CONS-2", RouteID: "UNKNOWN", Product: claims.ProductPMS, DeliveredAt: day.Add(time.Minute)},
	}))
	require.NoError(t, consignments.Put(memory.ConsignmentRecord{
		Consignment: application.Consignment{ID: "CONS-3", RouteID: "ACC-KSI"},
	}))

	proc, err := application.NewProcessor(application.Deps{
		Traces:          traces,
		Reference:       ref,
		Volumes:         consignments,
		Evidence:        consignments,
		Claims:          repo,
		Reconciliations: memory.NewReconciliationStore(),
		Sequence:        memory.NewSequence(),
	}, nil)
	require.NoError(t, err)
	batch, err := application.NewBatch(proc, func() int { return 2 }, nil)
	require.NoError(t, err)

	pending, err := consignments.PendingClaims(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2, "undelivered consignments are not pending")

	summary := batch.Run(ctx, pending)
	require.Len(t, summary.Succeeded, 1)
	assert.Equal(t, "CONS-1", summary.Succeeded[0].ConsignmentID)
	assert.Equal(t, "UPPF-20260302-000001", summary.Succeeded[0].ClaimNumber)
	require.Len(t, summary.Failed, 1)
	assert.True(t, summary.Failed[0].ReferenceMiss)

	pending, err = consignments.PendingClaims(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "CONS-2", pending[0].ID)

	claim, err := repo.FindByConsignment(ctx, "CONS-1")
	require.NoError(t, err)
	assert.Equal(t, claims.StatusReadyToSubmit, claim.Status)
	assert.Contains(t, claim.EvidenceRefs, "WB-001")
}
