package trace

import "time"

// Severity grades a deviation.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AtLeastHigh reports whether the severity blocks validation.
func (s Severity) AtLeastHigh() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// AnomalyType classifies statistical findings on a trace.
type AnomalyType string

const (
	AnomalySignalLoss     AnomalyType = "signal_loss"
	AnomalyExcessiveSpeed AnomalyType = "excessive_speed"
	AnomalyBacktracking   AnomalyType = "backtracking"
)

// DeviationType classifies rule breaches on a trace.
type DeviationType string

const (
	DeviationUnauthorizedStop DeviationType = "unauthorized_stop"
	DeviationRoute            DeviationType = "route_deviation"
)

// Anomaly is a derived finding with a detection confidence in [0,1].
type Anomaly struct {
	Type        AnomalyType `json:"type"`
	Confidence  float64     `json:"confidence"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Location    GeoPoint    `json:"location"`
	Description string      `json:"description"`
}

// Deviation is a derived rule breach with a severity.
type Deviation struct {
	Type        DeviationType `json:"type"`
	Severity    Severity      `json:"severity"`
	Location    GeoPoint      `json:"location"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
}

// Stop is a run of consecutive samples that stayed within the stop radius.
type Stop struct {
	Location GeoPoint      `json:"location"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// ReasonCode identifies a hard data-quality failure.
type ReasonCode string

const (
	ReasonInsufficientData  ReasonCode = "insufficient_data"
	ReasonOutOfOrderSamples ReasonCode = "out_of_order_samples"
	ReasonImpossibleSpeed   ReasonCode = "impossible_speed"
)

// Reason explains why a trace failed the quality check.
type Reason struct {
	Code    ReasonCode `json:"code"`
	Message string     `json:"message"`
}
