package settlement

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// LineResult is the settlement breakdown of one claim. Every component is
// rounded to 2 places; Net is never negative.
type LineResult struct {
	ClaimID     string          `json:"claim_id"`
	ClaimNumber string          `json:"claim_number"`
	Amount      decimal.Decimal `json:"amount"`

	ProcessingFee  decimal.Decimal `json:"processing_fee"`
	LatePenalty    decimal.Decimal `json:"late_penalty"`
	QualityPenalty decimal.Decimal `json:"quality_penalty"`
	GPSPenalty     decimal.Decimal `json:"gps_penalty"`

	EarlyBonus          decimal.Decimal `json:"early_bonus"`
	QualityBonus        decimal.Decimal `json:"quality_bonus"`
	GPSBonus            decimal.Decimal `json:"gps_bonus"`
	ReconciliationBonus decimal.Decimal `json:"reconciliation_bonus"`

	DaysLate   int             `json:"days_late,omitempty"`
	DaysEarly  int             `json:"days_early,omitempty"`
	Deductions decimal.Decimal `json:"deductions"`
	Bonuses    decimal.Decimal `json:"bonuses"`
	Net        decimal.Decimal `json:"net"`
}

// ComputeLine applies fees, penalties and bonuses to one claim.
func ComputeLine(line ClaimLine, window Window, p Policy) LineResult {
	amount := line.Amount
	share := func(rate decimal.Decimal) decimal.Decimal {
		if !rate.IsPositive() {
			return decimal.Zero
		}
		return amount.Mul(rate).Round(2)
	}
	rate := decimal.NewFromFloat

	out := LineResult{
		ClaimID:             line.ClaimID,
		ClaimNumber:         line.ClaimNumber,
		Amount:              amount,
		ProcessingFee:       share(rate(p.ProcessingFeeRate)),
		LatePenalty:         decimal.Zero,
		QualityPenalty:      decimal.Zero,
		GPSPenalty:          decimal.Zero,
		EarlyBonus:          decimal.Zero,
		QualityBonus:        decimal.Zero,
		GPSBonus:            decimal.Zero,
		ReconciliationBonus: decimal.Zero,
	}
	out.DaysLate, out.DaysEarly = submissionOffset(line.SubmittedAt, window.SubmissionDeadline)

	if p.IncludePenalties {
		if out.DaysLate > 0 {
			r := decimal.Min(rate(p.LatePenaltyPerDay).Mul(decimal.NewFromInt(int64(out.DaysLate))), rate(p.LatePenaltyCap))
			out.LatePenalty = share(r)
		}
		if line.QualityScore < p.QualityPenaltyBelow {
			out.QualityPenalty = share(rate(p.QualityPenaltyBelow - line.QualityScore).Mul(rate(p.QualityPenaltyPerPoint)))
		}
		if !line.GPSValidated || line.GPSConfidence < p.GPSPenaltyBelow {
			out.GPSPenalty = share(rate(p.GPSPenaltyRate))
		}
	}
	if p.IncludeBonuses {
		if out.DaysEarly > 0 {
			r := decimal.Min(rate(p.EarlyBonusPerDay).Mul(decimal.NewFromInt(int64(out.DaysEarly))), rate(p.EarlyBonusCap))
			out.EarlyBonus = share(r)
		}
		if line.QualityScore >= p.QualityBonusFrom {
			out.QualityBonus = share(rate(p.QualityBonusRate))
		}
		if line.GPSValidated && line.GPSConfidence >= p.GPSBonusFrom {
			out.GPSBonus = share(rate(p.GPSBonusRate))
		}
		if line.ThreeWayReconciled {
			out.ReconciliationBonus = share(rate(p.ReconciliationBonusRate))
		}
	}

	out.Deductions = out.ProcessingFee.Add(out.LatePenalty).Add(out.QualityPenalty).Add(out.GPSPenalty)
	out.Bonuses = out.EarlyBonus.Add(out.QualityBonus).Add(out.GPSBonus).Add(out.ReconciliationBonus)
	out.Net = amount.Sub(out.Deductions).Add(out.Bonuses)
	if out.Net.IsNegative() {
		out.Net = decimal.Zero
	}
	return out
}

// submissionOffset returns whole days late (rounded up) or early (rounded
// down) relative to the deadline. A missing time or deadline counts as
// neither.
func submissionOffset(submittedAt *time.Time, deadline time.Time) (late, early int) {
	if submittedAt == nil || submittedAt.IsZero() || deadline.IsZero() {
		return 0, 0
	}
	diff := submittedAt.Sub(deadline)
	switch {
	case diff > 0:
		return int(math.Ceil(float64(diff) / float64(day))), 0
	case diff < 0:
		return 0, int(-diff / day)
	default:
		return 0, 0
	}
}
