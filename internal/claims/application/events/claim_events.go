package events

import "time"

// ClaimGenerated is raised when the pipeline creates a claim.
type ClaimGenerated struct {
	EventID       string    `json:"event_id"`
	ClaimID       string    `json:"claim_id"`
	ClaimNumber   string    `json:"claim_number"`
	ConsignmentID string    `json:"consignment_id"`
	WindowID      string    `json:"window_id"`
	TotalAmount   string    `json:"total_amount"`
	Disposition   string    `json:"disposition"`
	Status        string    `json:"status"`
	RiskScore     float64   `json:"risk_score"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ReconciliationCompleted is raised after the three-way volume check of a
// consignment is recorded.
type ReconciliationCompleted struct {
	EventID          string    `json:"event_id"`
	AuditID          string    `json:"audit_id"`
	ConsignmentID    string    `json:"consignment_id"`
	Status           string    `json:"status"`
	ReconciledLitres float64   `json:"reconciled_litres"`
	Confidence       float64   `json:"confidence"`
	Variances        int       `json:"variances"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ClaimStatusChanged is raised on every accepted status transition.
type ClaimStatusChanged struct {
	EventID    string    `json:"event_id"`
	ClaimID    string    `json:"claim_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
