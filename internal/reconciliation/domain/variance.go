package reconciliation

import trace "uppf-claims/internal/trace/domain"

// Severity reuses the trace severity scale.
type Severity = trace.Severity

const (
	SeverityLow      = trace.SeverityLow
	SeverityMedium   = trace.SeverityMedium
	SeverityHigh     = trace.SeverityHigh
	SeverityCritical = trace.SeverityCritical
)

// VarianceType classifies a variance.
type VarianceType string

const (
	VarianceVolume      VarianceType = "volume"
	VarianceTemperature VarianceType = "temperature"
	VarianceTiming      VarianceType = "timing"
	VarianceQuality     VarianceType = "quality"
)

// Variance is one measured disagreement between parties.
type Variance struct {
	Type        VarianceType `json:"type"`
	Between     [2]Party     `json:"between"`
	Severity    Severity     `json:"severity"`
	Magnitude   float64      `json:"magnitude"`
	Tolerance   float64      `json:"tolerance"`
	Expected    float64      `json:"expected"`
	Actual      float64      `json:"actual"`
	Description string       `json:"description"`
	RootCause   string       `json:"root_cause,omitempty"`
	Action      string       `json:"corrective_action,omitempty"`
}

// Classify grades magnitude against tolerance:
// ratio <= 1 low, <= 2 medium, <= 5 high, otherwise critical.
func Classify(magnitude, tolerance float64) Severity {
	if tolerance <= 0 {
		return SeverityCritical
	}
	ratio := magnitude / tolerance
	switch {
	case ratio <= 1:
		return SeverityLow
	case ratio <= 2:
		return SeverityMedium
	case ratio <= 5:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

func countSeverity(vs []Variance, s Severity) int {
	var n int
	for _, v := range vs {
		if v.Severity == s {
			n++
		}
	}
	return n
}

func filterSeverity(vs []Variance, s Severity) []Variance {
	var out []Variance
	for _, v := range vs {
		if v.Severity == s {
			out = append(out, v)
		}
	}
	return out
}
