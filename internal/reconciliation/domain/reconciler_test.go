package reconciliation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reconciliation "uppf-claims/internal/reconciliation/domain"
)

func ptr(v float64) *float64 { return &v }

func scenario() reconciliation.Triple {
	return reconciliation.Triple{
		ConsignmentID: "CONS-001",
		Depot:         reconciliation.VolumeRecord{Party: reconciliation.PartyDepot, Litres: 5000, TemperatureC: 25, DocumentRef: "DLR-001", APIGravity: ptr(60)},
		Transporter:   reconciliation.VolumeRecord{Party: reconciliation.PartyTransporter, Litres: 4985, TemperatureC: 27, DocumentRef: "WB-001"},
		Station:       reconciliation.VolumeRecord{Party: reconciliation.PartyStation, Litres: 4980, TemperatureC: 28, DocumentRef: "SRR-001"},
	}
}

func TestVCFFallsAboveReference(t *testing.T) {
	assert.Equal(t, 1.0, reconciliation.VCF(15, 15, 0.00065))
	assert.InDelta(t, 0.9935, reconciliation.VCF(25, 15, 0.00065), 1e-12)
	assert.Greater(t, reconciliation.VCF(10, 15, 0.00065), 1.0)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		magnitude float64
		want      reconciliation.Severity
	}{
		{magnitude: 1, want: reconciliation.SeverityLow},
		{magnitude: 2, want: reconciliation.SeverityLow},
		{magnitude: 4, want: reconciliation.SeverityMedium},
		{magnitude: 10, want: reconciliation.SeverityHigh},
		{magnitude: 10.01, want: reconciliation.SeverityCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reconciliation.Classify(tt.magnitude, 2), "magnitude %v", tt.magnitude)
	}
}

func TestReconcileMatchedScenario(t *testing.T) {
	got := reconciliation.Reconcile(scenario(), reconciliation.ToleranceFactors{}, reconciliation.DefaultPolicy())

	matched, ok := got.(reconciliation.Matched)
	require.True(t, ok, "got %T", got)
	s := matched.Details()

	assert.InDelta(t, 4967.5, s.Corrected.Depot, 1e-6)
	assert.InDelta(t, 4946.117, s.Corrected.Transporter, 1e-3)
	assert.InDelta(t, 4937.919, s.Corrected.Station, 1e-3)
	assert.InDelta(t, 4952.21, s.ReconciledLitres, 0.01)
	assert.InDelta(t, 0.308, s.OverallVariancePct, 0.01)
	assert.InDelta(t, 2.0, s.TolerancePct, 1e-12)

	require.Len(t, s.Variances, 1)
	v := s.Variances[0]
	assert.Equal(t, [2]reconciliation.Party{reconciliation.PartyDepot, reconciliation.PartyStation}, v.Between)
	assert.Equal(t, reconciliation.SeverityLow, v.Severity)
	assert.InDelta(t, 0.95, s.Confidence, 1e-9)
	assert.Equal(t, []string{"DLR-001", "WB-001", "SRR-001"}, s.DocumentRefs)
}

func TestReconcileIsIdempotent(t *testing.T) {
	policy := reconciliation.DefaultPolicy()
	in := scenario()
	in.Station.Litres = 4700
	first := reconciliation.Reconcile(in, reconciliation.ToleranceFactors{}, policy)
	second := reconciliation.Reconcile(in, reconciliation.ToleranceFactors{}, policy)
	assert.Equal(t, first, second)
}

func TestReconcileCriticalFails(t *testing.T) {
	in := scenario()
	in.Station.Litres = 4500

	got := reconciliation.Reconcile(in, reconciliation.ToleranceFactors{}, reconciliation.DefaultPolicy())
	failed, ok := got.(reconciliation.Failed)
	require.True(t, ok, "got %T", got)

	require.Len(t, failed.Critical, 1)
	assert.NotEmpty(t, failed.Reasons)
	c := failed.Corrected
	want := 0.6*c.Depot + 0.2*c.Transporter + 0.2*c.Station
	assert.InDelta(t, want, failed.ReconciledLitres, 1e-9)
	assert.InDelta(t, 0.5, failed.Confidence, 1e-9)
	assert.InDelta(t, 50, failed.RiskScore, 1e-9)
}

func TestReconcileHighVarianceNeedsReview(t *testing.T) {
	in := scenario()
	in.Station.Litres = 4800

	got := reconciliation.Reconcile(in, reconciliation.ToleranceFactors{}, reconciliation.DefaultPolicy())
	detected, ok := got.(reconciliation.VarianceDetected)
	require.True(t, ok, "got %T", got)
	require.Len(t, detected.Flagged, 1)
	assert.Equal(t, reconciliation.SeverityHigh, detected.Flagged[0].Severity)
	assert.Contains(t, detected.Recommendations, "Calibrate tank measurement systems")
}

func TestReconcileToleranceFactorsWidenTolerance(t *testing.T) {
	in := scenario()
	in.Station.Litres = 4800

	got := reconciliation.Reconcile(in, reconciliation.ToleranceFactors{RouteComplexity: 2, ProductVolatility: 1.5}, reconciliation.DefaultPolicy())
	assert.Equal(t, reconciliation.StatusMatched, got.Status())
	assert.InDelta(t, 6.0, got.Details().TolerancePct, 1e-12)
}

func TestReconcileUnusableInputFails(t *testing.T) {
	in := scenario()
	in.Transporter.Litres = 0

	got := reconciliation.Reconcile(in, reconciliation.ToleranceFactors{}, reconciliation.DefaultPolicy())
	failed, ok := got.(reconciliation.Failed)
	require.True(t, ok, "got %T", got)
	assert.Equal(t, []string{"transporter volume missing or non-positive"}, failed.Reasons)
	assert.Zero(t, failed.ReconciledLitres)
	assert.Zero(t, failed.Confidence)
}

func TestReconcileSupplementalVariances(t *testing.T) {
	loaded := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	in := scenario()
	in.Transporter.TemperatureC = 31
	in.Depot.RecordedAt = loaded
	in.Transporter.RecordedAt = loaded.Add(13 * time.Hour)
	in.Depot.Density = ptr(0.745)
	in.Station.Density = ptr(0.760)

	got := reconciliation.Reconcile(in, reconciliation.ToleranceFactors{}, reconciliation.DefaultPolicy())
	byType := map[reconciliation.VarianceType]reconciliation.Variance{}
	for _, v := range got.Details().Variances {
		byType[v.Type] = v
	}

	require.Contains(t, byType, reconciliation.VarianceTemperature)
	assert.Equal(t, reconciliation.SeverityHigh, byType[reconciliation.VarianceTemperature].Severity)
	require.Contains(t, byType, reconciliation.VarianceTiming)
	assert.InDelta(t, 5, byType[reconciliation.VarianceTiming].Magnitude, 1e-9)
	require.Contains(t, byType, reconciliation.VarianceQuality)
	assert.Equal(t, reconciliation.SeverityHigh, byType[reconciliation.VarianceQuality].Severity)
	assert.Equal(t, reconciliation.StatusVarianceDetected, got.Status())
}

func TestReconcileLargeDepotCorrectionLowersConfidence(t *testing.T) {
	in := scenario()
	for _, r := range []*reconciliation.VolumeRecord{&in.Depot, &in.Transporter, &in.Station} {
		r.Litres = 5000
		r.TemperatureC = 95
	}

	got := reconciliation.Reconcile(in, reconciliation.ToleranceFactors{}, reconciliation.DefaultPolicy())
	assert.Equal(t, reconciliation.StatusMatched, got.Status())
	assert.InDelta(t, 0.9, got.Details().Confidence, 1e-9)
}

func TestRecordRestoresVariant(t *testing.T) {
	in := scenario()
	in.Station.Litres = 4500
	got := reconciliation.Reconcile(in, reconciliation.ToleranceFactors{}, reconciliation.DefaultPolicy())

	restored, err := reconciliation.FromRecord(reconciliation.ToRecord(got))
	require.NoError(t, err)
	assert.Equal(t, got, restored)

	_, err = reconciliation.FromRecord(reconciliation.Record{Status: "bogus"})
	assert.Error(t, err)
}
