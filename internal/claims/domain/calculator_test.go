package claims_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claims "uppf-claims/internal/claims/domain"
	reconciliation "uppf-claims/internal/reconciliation/domain"
	route "uppf-claims/internal/route/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTariffRate(t *testing.T) {
	tariffs := claims.DefaultTariffs()

	rate, err := tariffs.Rate(claims.ProductPMS, route.RoadUrban)
	require.NoError(t, err)
	assert.True(t, dec("0.00144").Equal(rate), rate.String())

	rate, err = tariffs.Rate(claims.ProductKerosene, "UNPAVED")
	require.NoError(t, err)
	assert.True(t, dec("0.0008").Equal(rate), rate.String())

	_, err = tariffs.Rate("JET_A1", route.RoadUrban)
	assert.ErrorIs(t, err, claims.ErrTariffNotFound)
	assert.ErrorIs(t, err, claims.ErrReferenceNotFound)
}

func TestComputeAmountsScenario(t *testing.T) {
	got := claims.ComputeAmounts(60, 4980, dec("0.00144"), 0, 0, claims.DefaultPolicy())
	assert.Equal(t, "430.27", got.Base.StringFixed(2))
	assert.True(t, got.EfficiencyBonus.IsZero())
	assert.True(t, got.ComplianceBonus.IsZero())
	assert.True(t, got.Total.Equal(got.Base))
}

func TestComputeAmountsBonuses(t *testing.T) {
	tests := []struct {
		name       string
		efficiency float64
		compliance float64
		wantEff    string
		wantComp   string
	}{
		{name: "at thresholds", efficiency: 90, compliance: 95, wantEff: "0.00", wantComp: "0.00"},
		{name: "half way", efficiency: 95, compliance: 97.5, wantEff: "21.51", wantComp: "10.76"},
		{name: "maximum", efficiency: 100, compliance: 100, wantEff: "43.03", wantComp: "21.51"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := claims.ComputeAmounts(60, 4980, dec("0.00144"), tt.efficiency, tt.compliance, claims.DefaultPolicy())
			assert.Equal(t, tt.wantEff, got.EfficiencyBonus.StringFixed(2))
			assert.Equal(t, tt.wantComp, got.ComplianceBonus.StringFixed(2))
			assert.True(t, got.Total.Equal(got.Base.Add(got.EfficiencyBonus).Add(got.ComplianceBonus)))
		})
	}
}

func TestComputeAmountsMonotonicInKm(t *testing.T) {
	prev := decimal.Zero
	for km := 0.0; km <= 300; km += 7.5 {
		got := claims.ComputeAmounts(km, 4980, dec("0.00144"), 96, 98, claims.DefaultPolicy())
		assert.False(t, got.Total.LessThan(prev), "km=%v", km)
		assert.False(t, got.Total.IsNegative())
		prev = got.Total
	}
	zero := claims.ComputeAmounts(-5, 4980, dec("0.00144"), 100, 100, claims.DefaultPolicy())
	assert.True(t, zero.Total.IsZero())
}

func TestDispose(t *testing.T) {
	p := claims.DefaultDispositionPolicy()
	tests := []struct {
		name        string
		reconFailed bool
		gpsValid    bool
		gps         float64
		evidence    float64
		want        claims.Disposition
		wantStatus  claims.Status
	}{
		{"reconciliation failed", true, true, 99, 100, claims.DispositionRejectedReconciliation, claims.StatusRejected},
		{"gps failed", false, false, 99, 100, claims.DispositionRejectedGPS, claims.StatusRejected},
		{"thin evidence", false, true, 99, 55, claims.DispositionInsufficientEvidence, claims.StatusDraft},
		{"auto submit", false, true, 95, 90, claims.DispositionAutoSubmit, claims.StatusReadyToSubmit},
		{"ready", false, true, 85, 75, claims.DispositionReadyToSubmit, claims.StatusReadyToSubmit},
		{"manual review", false, true, 84, 95, claims.DispositionManualReview, claims.StatusDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := claims.Dispose(tt.reconFailed, tt.gpsValid, tt.gps, tt.evidence, p)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantStatus, got.InitialStatus())
		})
	}
}

func TestEvidenceScore(t *testing.T) {
	w := claims.DefaultEvidenceWeights()
	assert.Equal(t, 0.0, claims.Evidence{}.Score(w))
	assert.Equal(t, 45.0, claims.Evidence{Waybill: true, GPSTrace: true}.Score(w))
	full := claims.Evidence{Waybill: true, GPSTrace: true, GoodsReceivedNote: true, TankDips: true, Weighbridge: true, SealVerification: true}
	assert.Equal(t, 100.0, full.Score(w))
}

func TestRiskScore(t *testing.T) {
	w := claims.DefaultRiskWeights()
	clean := claims.RiskScore(claims.RiskInput{GPSConfidencePct: 100, ReconConfidencePct: 100, EvidenceScore: 100}, w)
	assert.Zero(t, clean)

	mixed := claims.RiskScore(claims.RiskInput{Anomalies: 2, GPSConfidencePct: 80, ReconConfidencePct: 90, EvidenceScore: 70}, w)
	assert.InDelta(t, 20+10+3+6, mixed, 1e-9)

	worst := claims.RiskScore(claims.RiskInput{Anomalies: 9, ReconciliationFailed: true}, w)
	assert.Equal(t, 100.0, worst)
}

func TestPriorityFor(t *testing.T) {
	p := claims.DefaultPriorityPolicy()
	assert.Equal(t, claims.PriorityUrgent, claims.PriorityFor(dec("10000.01"), 90, p))
	assert.Equal(t, claims.PriorityHigh, claims.PriorityFor(dec("10000.01"), 85, p))
	assert.Equal(t, claims.PriorityMedium, claims.PriorityFor(dec("5000"), 95, p))
	assert.Equal(t, claims.PriorityLow, claims.PriorityFor(dec("50000"), 60, p))
}

func TestFormatClaimNumber(t *testing.T) {
	day := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "UPPF-20260302-000042", claims.FormatClaimNumber(day, 42))
}

func calcInput() claims.Input {
	return claims.Input{
		ClaimNumber:   "UPPF-20260302-000001",
		ConsignmentID: "CONS-001",
		VehicleID:     "GT-1234-20",
		WindowID:      "2026-03",
		Product:       claims.ProductPMS,
		Point: route.EqualisationPoint{
			RouteID: "R-TEMA-KSI", DepotID: "TEMA", StationID: "KSI-07",
			ThresholdKm: 120, RoadCategory: route.RoadUrban, Active: true,
		},
		Validation: route.Validation{
			IsValid:              true,
			Confidence:           0.96,
			KmActual:             180,
			AdjustedThresholdKm:  120,
			KmBeyondEqualisation: 60,
			RouteEfficiencyPct:   80,
			ComplianceScore:      90,
		},
		Reconciliation: reconciliation.Matched{Summary: reconciliation.Summary{
			ConsignmentID:    "CONS-001",
			ReconciledLitres: 4980,
			Confidence:       0.95,
			DocumentRefs:     []string{"DLR-001"},
		}},
		Evidence: claims.Evidence{
			Waybill: true, GPSTrace: true, GoodsReceivedNote: true,
			TankDips: true, Weighbridge: true, SealVerification: true,
			Refs: []string{"WB-001"},
		},
		Tariffs: claims.DefaultTariffs(),
		At:      time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestCalculateScenario(t *testing.T) {
	c, err := claims.Calculate(calcInput(), claims.DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, "430.27", c.TotalAmount.StringFixed(2))
	assert.Equal(t, 60.0, c.KmBeyondEqualisation)
	assert.Equal(t, claims.DispositionAutoSubmit, c.Disposition)
	assert.Equal(t, claims.StatusReadyToSubmit, c.Status)
	assert.Equal(t, claims.PriorityMedium, c.Priority)
	assert.True(t, c.ThreeWayReconciled)
	assert.Equal(t, 100.0, c.EvidenceScore)
	assert.InDelta(t, 3.5, c.RiskScore, 1e-9)
	assert.Equal(t, []string{"WB-001", "DLR-001"}, c.EvidenceRefs)
	assert.Equal(t, "R-TEMA-KSI", c.RouteID)
}

func TestCalculatePriorityBlendsGPSAndEvidence(t *testing.T) {
	tests := []struct {
		confidence float64
		want       claims.Priority
	}{
		{confidence: 0.96, want: claims.PriorityUrgent},
		{confidence: 0.70, want: claims.PriorityHigh},
		{confidence: 0.30, want: claims.PriorityLow},
	}
	for _, tt := range tests {
		in := calcInput()
		in.Validation.KmBeyondEqualisation = 1500
		in.Validation.Confidence = tt.confidence

		c, err := claims.Calculate(in, claims.DefaultPolicy())
		require.NoError(t, err)
		assert.Equal(t, "10756.80", c.TotalAmount.StringFixed(2))
		assert.Equal(t, tt.want, c.Priority, "confidence %v", tt.confidence)
	}
}

// Route validation tops out at its base confidence, below the auto-submit
// GPS threshold, so a perfect leg lands in ready_to_submit.
func TestCalculateBestRouteConfidenceIsReadyToSubmit(t *testing.T) {
	in := calcInput()
	in.Validation.Confidence = route.DefaultPolicy().BaseConfidence

	c, err := claims.Calculate(in, claims.DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, claims.DispositionReadyToSubmit, c.Disposition)
	assert.Equal(t, claims.StatusReadyToSubmit, c.Status)
}

func TestCalculateRejectsFailedReconciliation(t *testing.T) {
	in := calcInput()
	in.Reconciliation = reconciliation.Failed{Reasons: []string{"station volume missing or non-positive"}}

	c, err := claims.Calculate(in, claims.DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, claims.DispositionRejectedReconciliation, c.Disposition)
	assert.Equal(t, claims.StatusRejected, c.Status)
	assert.True(t, c.TotalAmount.IsZero())
	assert.False(t, c.ThreeWayReconciled)
}

func TestCalculateErrors(t *testing.T) {
	in := calcInput()
	in.Product = "JET_A1"
	_, err := claims.Calculate(in, claims.DefaultPolicy())
	assert.ErrorIs(t, err, claims.ErrReferenceNotFound)

	in = calcInput()
	in.ConsignmentID = ""
	_, err = claims.Calculate(in, claims.DefaultPolicy())
	assert.ErrorIs(t, err, claims.ErrEmptyConsignmentID)

	in = calcInput()
	in.Reconciliation = nil
	_, err = claims.Calculate(in, claims.DefaultPolicy())
	assert.Error(t, err)
}
