package reconciliation

import "fmt"

// Status is the outcome class of a reconciliation.
type Status string

const (
	StatusMatched          Status = "matched"
	StatusVarianceDetected Status = "variance_detected"
	StatusFailed           Status = "failed"
)

// Summary carries the figures shared by every result variant.
type Summary struct {
	ConsignmentID      string           `json:"consignment_id"`
	ReconciledLitres   float64          `json:"reconciled_litres"`
	OverallVariancePct float64          `json:"overall_variance_pct"`
	TolerancePct       float64          `json:"tolerance_pct"`
	Corrected          CorrectedVolumes `json:"corrected"`
	Variances          []Variance       `json:"variances,omitempty"`
	Confidence         float64          `json:"confidence"`
	RiskScore          float64          `json:"risk_score"`
	Recommendations    []string         `json:"recommendations,omitempty"`
	DocumentRefs       []string         `json:"document_refs,omitempty"`
}

// Details returns the shared summary.
func (s Summary) Details() Summary { return s }

// Result is one of Matched, VarianceDetected or Failed.
type Result interface {
	Status() Status
	Details() Summary
	isResult()
}

// Matched means the three parties agree within tolerance.
type Matched struct {
	Summary
}

// VarianceDetected means the volumes are usable but need review.
type VarianceDetected struct {
	Summary
	Flagged []Variance `json:"flagged"`
}

// Failed means the consignment cannot be reconciled, either because of a
// critical variance or because the input was unusable.
type Failed struct {
	Summary
	Critical []Variance `json:"critical,omitempty"`
	Reasons  []string   `json:"reasons"`
}

func (Matched) Status() Status          { return StatusMatched }
func (VarianceDetected) Status() Status { return StatusVarianceDetected }
func (Failed) Status() Status           { return StatusFailed }

func (Matched) isResult()          {}
func (VarianceDetected) isResult() {}
func (Failed) isResult()           {}

// Record is the flat, storable form of a Result.
type Record struct {
	Status   Status     `json:"status"`
	Summary  Summary    `json:"summary"`
	Flagged  []Variance `json:"flagged,omitempty"`
	Critical []Variance `json:"critical,omitempty"`
	Reasons  []string   `json:"reasons,omitempty"`
}

// ToRecord flattens a result for storage.
func ToRecord(r Result) Record {
	rec := Record{Status: r.Status(), Summary: r.Details()}
	switch v := r.(type) {
	case VarianceDetected:
		rec.Flagged = v.Flagged
	case Failed:
		rec.Critical = v.Critical
		rec.Reasons = v.Reasons
	}
	return rec
}

// FromRecord restores a result from its stored form.
func FromRecord(rec Record) (Result, error) {
	switch rec.Status {
	case StatusMatched:
		return Matched{Summary: rec.Summary}, nil
	case StatusVarianceDetected:
		return VarianceDetected{Summary: rec.Summary, Flagged: rec.Flagged}, nil
	case StatusFailed:
		return Failed{Summary: rec.Summary, Critical: rec.Critical, Reasons: rec.Reasons}, nil
	default:
		return nil, fmt.Errorf("reconciliation: unknown status %q", rec.Status)
	}
}
