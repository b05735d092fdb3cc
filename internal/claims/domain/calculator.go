package claims

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	reconciliation "uppf-claims/internal/reconciliation/domain"
	route "uppf-claims/internal/route/domain"
)

// Policy holds the claim calculation constants.
type Policy struct {
	EfficiencyBonusFromPct  float64           `yaml:"efficiency_bonus_from_pct"`
	EfficiencyBonusMaxShare float64           `yaml:"efficiency_bonus_max_share"`
	ComplianceBonusFrom     float64           `yaml:"compliance_bonus_from"`
	ComplianceBonusMaxShare float64           `yaml:"compliance_bonus_max_share"`
	Disposition             DispositionPolicy `yaml:"disposition"`
	Evidence                EvidenceWeights   `yaml:"evidence"`
	Risk                    RiskWeights       `yaml:"risk"`
	Priority                PriorityPolicy    `yaml:"priority"`
}

// DefaultPolicy returns the production claim policy.
func DefaultPolicy() Policy {
	return Policy{
		EfficiencyBonusFromPct:  90,
		EfficiencyBonusMaxShare: 0.10,
		ComplianceBonusFrom:     95,
		ComplianceBonusMaxShare: 0.05,
		Disposition:             DefaultDispositionPolicy(),
		Evidence:                DefaultEvidenceWeights(),
		Risk:                    DefaultRiskWeights(),
		Priority:                DefaultPriorityPolicy(),
	}
}

// Amounts are the money figures of a claim, each rounded to 2 places.
type Amounts struct {
	Tariff          decimal.Decimal `json:"tariff"`
	Base            decimal.Decimal `json:"base"`
	EfficiencyBonus decimal.Decimal `json:"efficiency_bonus"`
	ComplianceBonus decimal.Decimal `json:"compliance_bonus"`
	Total           decimal.Decimal `json:"total"`
}

// ComputeAmounts prices km beyond equalisation x litres x tariff and adds
// the efficiency and compliance bonuses. Total is exactly the sum of the
// rounded components and never negative.
func ComputeAmounts(kmBeyond, litres float64, tariff decimal.Decimal, efficiencyPct, complianceScore float64, p Policy) Amounts {
	kmBeyond = math.Max(0, kmBeyond)
	litres = math.Max(0, litres)

	base := decimal.NewFromFloat(kmBeyond).Mul(decimal.NewFromFloat(litres)).Mul(tariff).Round(2)
	if base.IsNegative() {
		base = decimal.Zero
	}
	eff := bonus(base, efficiencyPct, p.EfficiencyBonusFromPct, p.EfficiencyBonusMaxShare)
	comp := bonus(base, complianceScore, p.ComplianceBonusFrom, p.ComplianceBonusMaxShare)

	return Amounts{
		Tariff:          tariff,
		Base:            base,
		EfficiencyBonus: eff,
		ComplianceBonus: comp,
		Total:           base.Add(eff).Add(comp),
	}
}

// bonus scales linearly from 0 just above from to maxShare of base at 100.
func bonus(base decimal.Decimal, score, from, maxShare float64) decimal.Decimal {
	if score <= from || from >= 100 {
		return decimal.Zero
	}
	fraction := math.Min(1, (score-from)/(100-from))
	return base.Mul(decimal.NewFromFloat(maxShare * fraction)).Round(2)
}

// Input gathers every stage output needed to create a claim.
type Input struct {
	ClaimID        string
	ClaimNumber    string
	ConsignmentID  string
	VehicleID      string
	WindowID       string
	Product        ProductType
	Point          route.EqualisationPoint
	Validation     route.Validation
	Reconciliation reconciliation.Result
	Evidence       Evidence
	Tariffs        Tariffs
	At             time.Time
}

// Calculate creates a claim with amounts, disposition, priority and risk.
func Calculate(in Input, p Policy) (*Claim, error) {
	if in.ConsignmentID == "" {
		return nil, ErrEmptyConsignmentID
	}
	if in.ClaimNumber == "" {
		return nil, ErrEmptyClaimNumber
	}
	if in.Reconciliation == nil {
		return nil, errors.New("claims: nil reconciliation result")
	}
	rate, err := in.Tariffs.Rate(in.Product, in.Point.RoadCategory)
	if err != nil {
		return nil, err
	}

	recon := in.Reconciliation.Details()
	reconFailed := in.Reconciliation.Status() == reconciliation.StatusFailed
	v := in.Validation

	amounts := ComputeAmounts(v.KmBeyondEqualisation, recon.ReconciledLitres, rate, v.RouteEfficiencyPct, v.ComplianceScore, p)
	evidence := in.Evidence.Score(p.Evidence)
	gpsPct := v.Confidence * 100
	disposition := Dispose(reconFailed, v.IsValid, gpsPct, evidence, p.Disposition)

	at := in.At.UTC()
	claimID := in.ClaimID
	if claimID == "" {
		claimID = in.ClaimNumber
	}
	return &Claim{
		ID:                       claimID,
		ClaimNumber:              in.ClaimNumber,
		ConsignmentID:            in.ConsignmentID,
		RouteID:                  in.Point.RouteID,
		DepotID:                  in.Point.DepotID,
		StationID:                in.Point.StationID,
		VehicleID:                in.VehicleID,
		WindowID:                 in.WindowID,
		ProductType:              in.Product,
		KmActual:                 v.KmActual,
		AdjustedThresholdKm:      v.AdjustedThresholdKm,
		KmBeyondEqualisation:     v.KmBeyondEqualisation,
		Litres:                   recon.ReconciledLitres,
		Tariff:                   amounts.Tariff,
		BaseAmount:               amounts.Base,
		EfficiencyBonus:          amounts.EfficiencyBonus,
		ComplianceBonus:          amounts.ComplianceBonus,
		TotalAmount:              amounts.Total,
		Status:                   disposition.InitialStatus(),
		Disposition:              disposition,
		Priority:                 PriorityFor(amounts.Total, (gpsPct+evidence)/2, p.Priority),
		GPSValidated:             v.IsValid,
		GPSConfidence:            v.Confidence,
		AnomalyCount:             len(v.Anomalies),
		RouteEfficiencyPct:       v.RouteEfficiencyPct,
		ComplianceScore:          v.ComplianceScore,
		ThreeWayReconciled:       in.Reconciliation.Status() == reconciliation.StatusMatched,
		ReconciliationStatus:     string(in.Reconciliation.Status()),
		ReconciliationConfidence: recon.Confidence,
		EvidenceScore:            evidence,
		EvidenceRefs:             append(append([]string(nil), in.Evidence.Refs...), recon.DocumentRefs...),
		RiskScore: RiskScore(RiskInput{
			Anomalies:            len(v.Anomalies),
			GPSConfidencePct:     gpsPct,
			ReconciliationFailed: reconFailed,
			ReconConfidencePct:   recon.Confidence * 100,
			EvidenceScore:        evidence,
		}, p.Risk),
		CreatedAt: at,
		UpdatedAt: at,
	}, nil
}
