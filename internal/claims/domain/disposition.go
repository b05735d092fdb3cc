package claims

// Disposition is the automatic verdict given to a claim on creation.
type Disposition string

const (
	DispositionRejectedReconciliation Disposition = "rejected_reconciliation"
	DispositionRejectedGPS            Disposition = "rejected_gps"
	DispositionInsufficientEvidence   Disposition = "insufficient_evidence"
	DispositionAutoSubmit             Disposition = "auto_submit"
	DispositionReadyToSubmit          Disposition = "ready_to_submit"
	DispositionManualReview           Disposition = "manual_review"
)

// InitialStatus maps a disposition to the status a new claim starts in.
func (d Disposition) InitialStatus() Status {
	switch d {
	case DispositionRejectedReconciliation, DispositionRejectedGPS:
		return StatusRejected
	case DispositionAutoSubmit, DispositionReadyToSubmit:
		return StatusReadyToSubmit
	default:
		return StatusDraft
	}
}

// DispositionPolicy holds the thresholds for Dispose. GPS thresholds are
// percentages. AutoSubmitGPS sits above the route validator's default
// base confidence (90), so auto-submit needs either a lower AutoSubmitGPS
// or a higher route base_confidence in the policy file.
type DispositionPolicy struct {
	MinEvidence        float64 `yaml:"min_evidence"`
	AutoSubmitGPS      float64 `yaml:"auto_submit_gps"`
	AutoSubmitEvidence float64 `yaml:"auto_submit_evidence"`
	ReadyGPS           float64 `yaml:"ready_gps"`
	ReadyEvidence      float64 `yaml:"ready_evidence"`
}

// DefaultDispositionPolicy returns the production thresholds.
func DefaultDispositionPolicy() DispositionPolicy {
	return DispositionPolicy{
		MinEvidence:        60,
		AutoSubmitGPS:      95,
		AutoSubmitEvidence: 90,
		ReadyGPS:           85,
		ReadyEvidence:      75,
	}
}

// Dispose assigns a disposition. gpsConfidencePct and evidence are 0..100.
func Dispose(reconciliationFailed, gpsValid bool, gpsConfidencePct, evidence float64, p DispositionPolicy) Disposition {
	switch {
	case reconciliationFailed:
		return DispositionRejectedReconciliation
	case !gpsValid:
		return DispositionRejectedGPS
	case evidence < p.MinEvidence:
		return DispositionInsufficientEvidence
	case gpsConfidencePct >= p.AutoSubmitGPS && evidence >= p.AutoSubmitEvidence:
		return DispositionAutoSubmit
	case gpsConfidencePct >= p.ReadyGPS && evidence >= p.ReadyEvidence:
		return DispositionReadyToSubmit
	default:
		return DispositionManualReview
	}
}
