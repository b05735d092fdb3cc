package route

import (
	"fmt"
	"math"
	"time"

	trace "uppf-claims/internal/trace/domain"
)

// Policy holds the route validation constants.
type Policy struct {
	Analyzer trace.AnalyzerPolicy `yaml:"analyzer"`

	CorridorMeters            float64 `yaml:"corridor_meters"`
	BlockingAnomalyConfidence float64 `yaml:"blocking_anomaly_confidence"`
	BaseConfidence            float64 `yaml:"base_confidence"`
	PoorDataConfidence        float64 `yaml:"poor_data_confidence"`
	DeviationPenalty          float64 `yaml:"deviation_penalty"`
	AnomalyPenalty            float64 `yaml:"anomaly_penalty"`

	PlannedSpeedKmh     float64 `yaml:"planned_speed_kmh"`
	DurationAllowance   float64 `yaml:"duration_allowance"`
	AnomalyPoints       float64 `yaml:"anomaly_points"`
	SpeedViolationPoint float64 `yaml:"speed_violation_points"`
	OvertimePoints      float64 `yaml:"overtime_points"`
}

// DefaultPolicy returns the production validation policy.
func DefaultPolicy() Policy {
	return Policy{
		Analyzer:                  trace.DefaultAnalyzerPolicy(),
		CorridorMeters:            2000,
		BlockingAnomalyConfidence: 0.8,
		BaseConfidence:            0.9,
		PoorDataConfidence:        0.3,
		DeviationPenalty:          0.1,
		AnomalyPenalty:            0.05,
		PlannedSpeedKmh:           50,
		DurationAllowance:         1.5,
		AnomalyPoints:             5,
		SpeedViolationPoint:       3,
		OvertimePoints:            10,
	}
}

// Request is the input to Validate. PlannedDurationHint, when set,
// replaces the duration derived from the planned distance.
type Request struct {
	Planned             []trace.GeoPoint
	Samples             []trace.GeoSample
	Point               EqualisationPoint
	AuthorizedStops     []trace.GeoPoint
	PlannedDurationHint time.Duration
}

// Validation is the result of validating one delivery leg.
type Validation struct {
	IsValid              bool              `json:"is_valid"`
	Confidence           float64           `json:"confidence"`
	KmActual             float64           `json:"km_actual"`
	KmPlanned            float64           `json:"km_planned"`
	AdjustedThresholdKm  float64           `json:"adjusted_threshold_km"`
	KmBeyondEqualisation float64           `json:"km_beyond_equalisation"`
	RouteEfficiencyPct   float64           `json:"route_efficiency_pct"`
	ComplianceScore      float64           `json:"compliance_score"`
	Deviations           []trace.Deviation `json:"deviations,omitempty"`
	Anomalies            []trace.Anomaly   `json:"anomalies,omitempty"`
	Reasons              []string          `json:"reasons,omitempty"`
	Analysis             trace.Analysis    `json:"analysis"`
}

// Validate checks an actual trace against the planned route and the
// equalisation reference.
func Validate(req Request, policy Policy) Validation {
	analysis := trace.Analyze(req.Samples, req.AuthorizedStops, policy.Analyzer)

	out := Validation{
		Analysis:            analysis,
		Anomalies:           analysis.Anomalies,
		KmActual:            analysis.Metrics.TotalKm,
		KmPlanned:           trace.PolylineKm(req.Planned),
		AdjustedThresholdKm: req.Point.AdjustedThreshold(),
	}
	out.KmBeyondEqualisation = req.Point.KmBeyond(out.KmActual)

	out.Deviations = append(out.Deviations, corridorDeviations(req.Planned, req.Samples, policy)...)
	out.Deviations = append(out.Deviations, analysis.Deviations...)

	out.IsValid = analysis.QualityPassed && !hasBlocking(out.Deviations, out.Anomalies, policy)
	out.Confidence = confidence(analysis.QualityPassed, len(out.Deviations), len(out.Anomalies), policy)
	out.RouteEfficiencyPct = routeEfficiency(out.KmPlanned, out.KmActual)
	out.ComplianceScore = complianceScore(analysis, plannedDuration(out.KmPlanned, req.PlannedDurationHint, policy), policy)

	for _, r := range analysis.Reasons {
		out.Reasons = append(out.Reasons, r.Message)
	}
	for _, d := range out.Deviations {
		out.Reasons = append(out.Reasons, d.Description)
	}
	for _, a := range out.Anomalies {
		out.Reasons = append(out.Reasons, a.Description)
	}
	return out
}

func corridorDeviations(planned []trace.GeoPoint, samples []trace.GeoSample, policy Policy) []trace.Deviation {
	if len(planned) == 0 {
		return nil
	}
	var out []trace.Deviation
	for _, s := range samples {
		d := DistanceToPolyline(s.GeoPoint, planned)
		if d <= policy.CorridorMeters {
			continue
		}
		out = append(out, trace.Deviation{
			Type:        trace.DeviationRoute,
			Severity:    trace.SeverityMedium,
			Location:    s.GeoPoint,
			Start:       s.Timestamp,
			End:         s.Timestamp,
			Description: fmt.Sprintf("vehicle %.1f km from planned route", d/1000),
		})
	}
	return out
}

func hasBlocking(deviations []trace.Deviation, anomalies []trace.Anomaly, policy Policy) bool {
	for _, d := range deviations {
		if d.Severity.AtLeastHigh() {
			return true
		}
	}
	for _, a := range anomalies {
		if a.Confidence > policy.BlockingAnomalyConfidence {
			return true
		}
	}
	return false
}

func confidence(qualityPassed bool, deviations, anomalies int, policy Policy) float64 {
	score := policy.PoorDataConfidence
	if qualityPassed {
		score = policy.BaseConfidence
	}
	score -= float64(deviations) * policy.DeviationPenalty
	score -= float64(anomalies) * policy.AnomalyPenalty
	return clamp(score, 0, 1)
}

func routeEfficiency(plannedKm, actualKm float64) float64 {
	if plannedKm <= 0 || actualKm <= 0 {
		return 0
	}
	return math.Min(100, plannedKm/actualKm*100)
}

// plannedDuration is zero when neither a hint nor a planned route exists.
func plannedDuration(plannedKm float64, hint time.Duration, policy Policy) time.Duration {
	if hint > 0 {
		return hint
	}
	if plannedKm > 0 && policy.PlannedSpeedKmh > 0 {
		return time.Duration(plannedKm / policy.PlannedSpeedKmh * float64(time.Hour))
	}
	return 0
}

func complianceScore(analysis trace.Analysis, planned time.Duration, policy Policy) float64 {
	score := 100.0
	score -= float64(len(analysis.Anomalies)) * policy.AnomalyPoints
	score -= float64(analysis.Metrics.SpeedViolations) * policy.SpeedViolationPoint
	if planned > 0 && float64(analysis.Metrics.Elapsed) > float64(planned)*policy.DurationAllowance {
		score -= policy.OvertimePoints
	}
	return math.Max(0, score)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
