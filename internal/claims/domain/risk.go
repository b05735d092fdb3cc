package claims

import (
	"math"

	"github.com/shopspring/decimal"
)

// RiskWeights combine the risk factors of a claim.
type RiskWeights struct {
	PerAnomaly           float64 `yaml:"per_anomaly"`
	GPSShortfall         float64 `yaml:"gps_shortfall"`
	ReconciliationFailed float64 `yaml:"reconciliation_failed"`
	ReconShortfall       float64 `yaml:"reconciliation_shortfall"`
	EvidenceShortfall    float64 `yaml:"evidence_shortfall"`
}

// DefaultRiskWeights returns the standard risk weighting.
func DefaultRiskWeights() RiskWeights {
	return RiskWeights{
		PerAnomaly:           10,
		GPSShortfall:         0.5,
		ReconciliationFailed: 30,
		ReconShortfall:       0.3,
		EvidenceShortfall:    0.2,
	}
}

// RiskInput are the factors of RiskScore. Percentages are 0..100.
type RiskInput struct {
	Anomalies            int
	GPSConfidencePct     float64
	ReconciliationFailed bool
	ReconConfidencePct   float64
	EvidenceScore        float64
}

// RiskScore returns a 0..100 risk score.
func RiskScore(in RiskInput, w RiskWeights) float64 {
	score := float64(in.Anomalies) * w.PerAnomaly
	score += (100 - in.GPSConfidencePct) * w.GPSShortfall
	if in.ReconciliationFailed {
		score += w.ReconciliationFailed
	}
	score += (100 - in.ReconConfidencePct) * w.ReconShortfall
	score += (100 - in.EvidenceScore) * w.EvidenceShortfall
	return math.Round(math.Max(0, math.Min(100, score))*100) / 100
}

// Priority orders ready claims for submission.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityPolicy holds the amount and quality cut-offs for priorities.
type PriorityPolicy struct {
	UrgentAmount  decimal.Decimal `yaml:"urgent_amount"`
	UrgentQuality float64         `yaml:"urgent_quality"`
	HighAmount    decimal.Decimal `yaml:"high_amount"`
	HighQuality   float64         `yaml:"high_quality"`
	MediumQuality float64         `yaml:"medium_quality"`
}

// DefaultPriorityPolicy returns the standard cut-offs.
func DefaultPriorityPolicy() PriorityPolicy {
	return PriorityPolicy{
		UrgentAmount:  decimal.NewFromInt(10000),
		UrgentQuality: 90,
		HighAmount:    decimal.NewFromInt(5000),
		HighQuality:   80,
		MediumQuality: 70,
	}
}

// PriorityFor ranks a claim by amount and quality score. Calculate uses
// the mean of GPS confidence and evidence score as quality.
func PriorityFor(amount decimal.Decimal, quality float64, p PriorityPolicy) Priority {
	switch {
	case amount.GreaterThan(p.UrgentAmount) && quality >= p.UrgentQuality:
		return PriorityUrgent
	case amount.GreaterThan(p.HighAmount) && quality >= p.HighQuality:
		return PriorityHigh
	case quality >= p.MediumQuality:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
