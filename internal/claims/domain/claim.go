package claims

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusChange is one entry of a claim's status history.
type StatusChange struct {
	From Status    `json:"from"`
	To   Status    `json:"to"`
	At   time.Time `json:"at"`
	Note string    `json:"note,omitempty"`
}

// Claim is an equalisation claim for one consignment.
type Claim struct {
	ID            string      `json:"id"`
	ClaimNumber   string      `json:"claim_number"`
	ConsignmentID string      `json:"consignment_id"`
	RouteID       string      `json:"route_id"`
	DepotID       string      `json:"depot_id"`
	StationID     string      `json:"station_id"`
	VehicleID     string      `json:"vehicle_id"`
	WindowID      string      `json:"window_id"`
	ProductType   ProductType `json:"product_type"`

	KmActual             float64         `json:"km_actual"`
	AdjustedThresholdKm  float64         `json:"adjusted_threshold_km"`
	KmBeyondEqualisation float64         `json:"km_beyond_equalisation"`
	Litres               float64         `json:"litres"`
	Tariff               decimal.Decimal `json:"tariff"`
	BaseAmount           decimal.Decimal `json:"base_amount"`
	EfficiencyBonus      decimal.Decimal `json:"efficiency_bonus"`
	ComplianceBonus      decimal.Decimal `json:"compliance_bonus"`
	TotalAmount          decimal.Decimal `json:"total_amount"`

	Status      Status      `json:"status"`
	Disposition Disposition `json:"disposition"`
	Priority    Priority    `json:"priority"`

	GPSValidated             bool     `json:"gps_validated"`
	GPSConfidence            float64  `json:"gps_confidence"`
	AnomalyCount             int      `json:"anomaly_count"`
	RouteEfficiencyPct       float64  `json:"route_efficiency_pct"`
	ComplianceScore          float64  `json:"compliance_score"`
	ThreeWayReconciled       bool     `json:"three_way_reconciled"`
	ReconciliationStatus     string   `json:"reconciliation_status"`
	ReconciliationConfidence float64  `json:"reconciliation_confidence"`
	EvidenceScore            float64  `json:"evidence_score"`
	EvidenceRefs             []string `json:"evidence_refs,omitempty"`
	RiskScore                float64  `json:"risk_score"`

	SubmissionRef string         `json:"submission_ref,omitempty"`
	SubmittedAt   *time.Time     `json:"submitted_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	History       []StatusChange `json:"history,omitempty"`
}

// Transition moves the claim to a new status if the lifecycle allows it.
func (c *Claim) Transition(to Status, at time.Time, note string) error {
	if !CanTransition(c.Status, to) {
		return &TransitionError{ClaimID: c.ID, From: c.Status, To: to}
	}
	at = at.UTC()
	c.History = append(c.History, StatusChange{From: c.Status, To: to, At: at, Note: note})
	c.Status = to
	c.UpdatedAt = at
	if to == StatusSubmitted {
		c.SubmittedAt = &at
	}
	return nil
}

// Submit moves a ready claim to submitted under a submission reference.
func (c *Claim) Submit(ref string, at time.Time) error {
	if err := c.Transition(StatusSubmitted, at, ref); err != nil {
		return err
	}
	c.SubmissionRef = ref
	return nil
}

// Clone returns a deep copy.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	cp := *c
	cp.EvidenceRefs = append([]string(nil), c.EvidenceRefs...)
	cp.History = append([]StatusChange(nil), c.History...)
	if c.SubmittedAt != nil {
		at := *c.SubmittedAt
		cp.SubmittedAt = &at
	}
	return &cp
}
