package reconciliation

import (
	"fmt"
	"math"
	"time"
)

// Weights are the shares of depot, transporter and station volumes in the
// reconciled figure.
type Weights struct {
	Depot       float64 `yaml:"depot"`
	Transporter float64 `yaml:"transporter"`
	Station     float64 `yaml:"station"`
}

// normalized rescales the weights to sum to 1.
func (w Weights) normalized() Weights {
	sum := w.Depot + w.Transporter + w.Station
	if sum <= 0 {
		return Weights{Depot: 1.0 / 3, Transporter: 1.0 / 3, Station: 1.0 / 3}
	}
	return Weights{Depot: w.Depot / sum, Transporter: w.Transporter / sum, Station: w.Station / sum}
}

// Penalties are confidence deductions per variance severity.
type Penalties struct {
	Low      float64 `yaml:"low"`
	Medium   float64 `yaml:"medium"`
	High     float64 `yaml:"high"`
	Critical float64 `yaml:"critical"`
}

func (p Penalties) of(s Severity) float64 {
	switch s {
	case SeverityCritical:
		return p.Critical
	case SeverityHigh:
		return p.High
	case SeverityMedium:
		return p.Medium
	default:
		return p.Low
	}
}

// Policy holds the reconciliation constants.
type Policy struct {
	ReferenceTempC          float64       `yaml:"reference_temp_c"`
	ExpansionCoefficient    float64       `yaml:"expansion_coefficient"`
	BaseTolerancePct        float64       `yaml:"base_tolerance_pct"`
	ReportingFloorPct       float64       `yaml:"reporting_floor_pct"`
	OverallVarianceLimitPct float64       `yaml:"overall_variance_limit_pct"`
	TemperatureToleranceC   float64       `yaml:"temperature_tolerance_c"`
	ExpectedTransit         time.Duration `yaml:"expected_transit"`
	TimingTolerance         time.Duration `yaml:"timing_tolerance"`
	DensityTolerancePct     float64       `yaml:"density_tolerance_pct"`
	Weights                 Weights       `yaml:"weights"`
	CriticalWeights         Weights       `yaml:"critical_weights"`
	Penalties               Penalties     `yaml:"penalties"`
	VCFDeviationLimit       float64       `yaml:"vcf_deviation_limit"`
	VCFPenalty              float64       `yaml:"vcf_penalty"`
}

// DefaultPolicy returns the production reconciliation policy.
func DefaultPolicy() Policy {
	return Policy{
		ReferenceTempC:          15,
		ExpansionCoefficient:    0.00065,
		BaseTolerancePct:        2,
		ReportingFloorPct:       0.5,
		OverallVarianceLimitPct: 2,
		TemperatureToleranceC:   2,
		ExpectedTransit:         8 * time.Hour,
		TimingTolerance:         2 * time.Hour,
		DensityTolerancePct:     0.5,
		Weights:                 Weights{Depot: 0.4, Transporter: 0.3, Station: 0.3},
		CriticalWeights:         Weights{Depot: 0.6, Transporter: 0.2, Station: 0.2},
		Penalties:               Penalties{Low: 0.05, Medium: 0.1, High: 0.2, Critical: 0.3},
		VCFDeviationLimit:       0.05,
		VCFPenalty:              0.1,
	}
}

// Reconcile compares the three volume records of a consignment. Unusable
// input yields a Failed result with reasons rather than an error, and the
// same input always yields the same result.
func Reconcile(in Triple, factors ToleranceFactors, policy Policy) Result {
	tolerance := factors.Tolerance(policy.BaseTolerancePct)
	if reasons := inputReasons(in); len(reasons) > 0 {
		return Failed{
			Summary: Summary{
				ConsignmentID:   in.ConsignmentID,
				TolerancePct:    tolerance,
				RiskScore:       100,
				Recommendations: []string{"Obtain complete volume records from all three parties and re-run reconciliation"},
				DocumentRefs:    in.DocumentRefs(),
			},
			Reasons: reasons,
		}
	}

	corrected := correct(in, policy)
	variances := volumeVariances(corrected, tolerance, policy)
	variances = append(variances, supplementalVariances(in, policy)...)

	critical := filterSeverity(variances, SeverityCritical)
	weights := policy.Weights
	if len(critical) > 0 {
		weights = policy.CriticalWeights
	}
	weights = weights.normalized()
	reconciled := corrected.Depot*weights.Depot +
		corrected.Transporter*weights.Transporter +
		corrected.Station*weights.Station

	summary := Summary{
		ConsignmentID:      in.ConsignmentID,
		ReconciledLitres:   reconciled,
		OverallVariancePct: math.Abs(corrected.Depot-reconciled) / corrected.Depot * 100,
		TolerancePct:       tolerance,
		Corrected:          corrected,
		Variances:          variances,
		DocumentRefs:       in.DocumentRefs(),
	}
	summary.Confidence = confidence(variances, corrected.DepotVCF, policy)
	summary.RiskScore = math.Round((1-summary.Confidence)*100*100) / 100
	summary.Recommendations = recommendations(variances)

	switch {
	case len(critical) > 0:
		reasons := make([]string, 0, len(critical))
		for _, v := range critical {
			reasons = append(reasons, v.Description)
		}
		return Failed{Summary: summary, Critical: critical, Reasons: reasons}
	case countSeverity(variances, SeverityHigh) > 0 || summary.OverallVariancePct > policy.OverallVarianceLimitPct:
		return VarianceDetected{Summary: summary, Flagged: filterSeverity(variances, SeverityHigh)}
	default:
		return Matched{Summary: summary}
	}
}

func inputReasons(in Triple) []string {
	var reasons []string
	for _, r := range []struct {
		party Party
		rec   VolumeRecord
	}{
		{PartyDepot, in.Depot},
		{PartyTransporter, in.Transporter},
		{PartyStation, in.Station},
	} {
		if math.IsNaN(r.rec.Litres) || r.rec.Litres <= 0 {
			reasons = append(reasons, fmt.Sprintf("%s volume missing or non-positive", r.party))
		}
		if math.IsNaN(r.rec.TemperatureC) || math.IsInf(r.rec.TemperatureC, 0) {
			reasons = append(reasons, fmt.Sprintf("%s temperature invalid", r.party))
		}
	}
	return reasons
}

func correct(in Triple, policy Policy) CorrectedVolumes {
	vcf := func(t float64) float64 { return VCF(t, policy.ReferenceTempC, policy.ExpansionCoefficient) }
	out := CorrectedVolumes{
		DepotVCF:       vcf(in.Depot.TemperatureC),
		TransporterVCF: vcf(in.Transporter.TemperatureC),
		StationVCF:     vcf(in.Station.TemperatureC),
	}
	out.Depot = in.Depot.Litres * out.DepotVCF
	out.Transporter = in.Transporter.Litres * out.TransporterVCF
	out.Station = in.Station.Litres * out.StationVCF
	return out
}

// volumeVariances compares each pair of corrected volumes as a percentage
// of the corrected depot volume. Pairs at or under the reporting floor are
// not recorded.
func volumeVariances(c CorrectedVolumes, tolerance float64, policy Policy) []Variance {
	pairs := []struct {
		a, b      Party
		va, vb    float64
		rootCause string
		action    string
	}{
		{PartyDepot, PartyTransporter, c.Depot, c.Transporter,
			"possible loading error or spillage during transport", "verify loading procedures and check for leaks"},
		{PartyTransporter, PartyStation, c.Transporter, c.Station,
			"possible measurement error or ullage during unloading", "verify tank calibration and unloading procedures"},
		{PartyDepot, PartyStation, c.Depot, c.Station,
			"end-to-end loss between loading and receipt", "compare depot meter and station dip readings"},
	}

	var out []Variance
	for _, p := range pairs {
		pct := math.Abs(p.va-p.vb) / c.Depot * 100
		if pct <= policy.ReportingFloorPct {
			continue
		}
		out = append(out, Variance{
			Type:        VarianceVolume,
			Between:     [2]Party{p.a, p.b},
			Severity:    Classify(pct, tolerance),
			Magnitude:   pct,
			Tolerance:   tolerance,
			Expected:    p.va,
			Actual:      p.vb,
			Description: fmt.Sprintf("%s-%s volume variance: %.2f%%", p.a, p.b, pct),
			RootCause:   p.rootCause,
			Action:      p.action,
		})
	}
	return out
}

func supplementalVariances(in Triple, policy Policy) []Variance {
	var out []Variance

	if drift := math.Abs(in.Depot.TemperatureC - in.Transporter.TemperatureC); drift > policy.TemperatureToleranceC {
		out = append(out, Variance{
			Type:        VarianceTemperature,
			Between:     [2]Party{PartyDepot, PartyTransporter},
			Severity:    Classify(drift, policy.TemperatureToleranceC),
			Magnitude:   drift,
			Tolerance:   policy.TemperatureToleranceC,
			Expected:    in.Depot.TemperatureC,
			Actual:      in.Transporter.TemperatureC,
			Description: fmt.Sprintf("temperature change during transport: %.1f°C", drift),
		})
	}

	if !in.Depot.RecordedAt.IsZero() && !in.Transporter.RecordedAt.IsZero() && policy.TimingTolerance > 0 {
		expected := in.Depot.RecordedAt.Add(policy.ExpectedTransit)
		off := in.Transporter.RecordedAt.Sub(expected)
		if off < 0 {
			off = -off
		}
		if off > policy.TimingTolerance {
			hours := off.Hours()
			tol := policy.TimingTolerance.Hours()
			out = append(out, Variance{
				Type:        VarianceTiming,
				Between:     [2]Party{PartyDepot, PartyTransporter},
				Severity:    Classify(hours, tol),
				Magnitude:   hours,
				Tolerance:   tol,
				Expected:    float64(expected.Unix()),
				Actual:      float64(in.Transporter.RecordedAt.Unix()),
				Description: fmt.Sprintf("delivery timing variance: %.1f hours", hours),
			})
		}
	}

	if in.Depot.Density != nil && in.Station.Density != nil && *in.Depot.Density > 0 {
		pct := math.Abs(*in.Depot.Density-*in.Station.Density) / *in.Depot.Density * 100
		if pct > policy.DensityTolerancePct {
			out = append(out, Variance{
				Type:        VarianceQuality,
				Between:     [2]Party{PartyDepot, PartyStation},
				Severity:    Classify(pct, policy.DensityTolerancePct),
				Magnitude:   pct,
				Tolerance:   policy.DensityTolerancePct,
				Expected:    *in.Depot.Density,
				Actual:      *in.Station.Density,
				Description: fmt.Sprintf("density variance: %.2f%%", pct),
			})
		}
	}
	return out
}

func confidence(variances []Variance, depotVCF float64, policy Policy) float64 {
	score := 1.0
	for _, v := range variances {
		score -= policy.Penalties.of(v.Severity)
	}
	if math.Abs(depotVCF-1) > policy.VCFDeviationLimit {
		score -= policy.VCFPenalty
	}
	return math.Max(0, math.Min(1, score))
}

func recommendations(variances []Variance) []string {
	has := func(t VarianceType) bool {
		for _, v := range variances {
			if v.Type == t {
				return true
			}
		}
		return false
	}

	var out []string
	if has(VarianceVolume) {
		out = append(out,
			"Review loading and unloading procedures",
			"Calibrate tank measurement systems",
			"Implement real-time volume monitoring",
		)
	}
	if has(VarianceTemperature) {
		out = append(out,
			"Monitor temperature throughout transport chain",
			"Use insulated transport where necessary",
		)
	}
	if has(VarianceTiming) {
		out = append(out, "Review dispatch and delivery scheduling for this route")
	}
	if has(VarianceQuality) {
		out = append(out,
			"Sample product quality at each transfer point",
			"Review product handling procedures",
		)
	}
	if len(variances) == 0 {
		return append(out, "Reconciliation passed, no action required")
	}
	return append(out,
		"Document all variances for trend analysis",
		"Apply corrective actions for recurring issues",
	)
}
