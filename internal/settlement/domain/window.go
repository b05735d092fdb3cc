package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	claims "uppf-claims/internal/claims/domain"
)

// Window is a settlement window with its submission deadline.
type Window struct {
	ID                 string    `json:"id"`
	SubmissionDeadline time.Time `json:"submission_deadline"`
}

// ClaimLine is the part of a claim the settlement processor reads.
type ClaimLine struct {
	ClaimID            string          `json:"claim_id"`
	ClaimNumber        string          `json:"claim_number"`
	WindowID           string          `json:"window_id"`
	Status             claims.Status   `json:"status"`
	Amount             decimal.Decimal `json:"amount"`
	QualityScore       float64         `json:"quality_score"`
	GPSValidated       bool            `json:"gps_validated"`
	GPSConfidence      float64         `json:"gps_confidence"`
	ThreeWayReconciled bool            `json:"three_way_reconciled"`
	SubmittedAt        *time.Time      `json:"submitted_at,omitempty"`
}

// LineFromClaim projects a claim onto a settlement line. The evidence
// score stands in for the quality score.
func LineFromClaim(c *claims.Claim) ClaimLine {
	line := ClaimLine{
		ClaimID:            c.ID,
		ClaimNumber:        c.ClaimNumber,
		WindowID:           c.WindowID,
		Status:             c.Status,
		Amount:             c.TotalAmount,
		QualityScore:       c.EvidenceScore,
		GPSValidated:       c.GPSValidated,
		GPSConfidence:      c.GPSConfidence,
		ThreeWayReconciled: c.ThreeWayReconciled,
	}
	if c.SubmittedAt != nil {
		at := *c.SubmittedAt
		line.SubmittedAt = &at
	}
	return line
}

// Rejection names a claim left out of a settlement and the rule it broke.
type Rejection struct {
	ClaimID string `json:"claim_id"`
	Rule    string `json:"rule"`
}
