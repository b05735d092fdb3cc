package settlement

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Receivable is a submitted claim as seen by the payment dashboard.
// Claimed is the gross claim amount; zero means AmountDue. AmountPaid is
// nil until a payment has been allocated to the claim.
type Receivable struct {
	ClaimID     string           `json:"claim_id"`
	Claimed     decimal.Decimal  `json:"claimed"`
	AmountDue   decimal.Decimal  `json:"amount_due"`
	AmountPaid  *decimal.Decimal `json:"amount_paid,omitempty"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
}

// ShortPay is a paid claim that received less than it was due.
type ShortPay struct {
	ClaimID   string          `json:"claim_id"`
	Expected  decimal.Decimal `json:"expected"`
	Received  decimal.Decimal `json:"received"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

// Aging counts unpaid claims by days since submission.
type Aging struct {
	Under30    int `json:"under_30_days"`
	Days30to60 int `json:"days_30_to_60"`
	Days60to90 int `json:"days_60_to_90"`
	Over90     int `json:"over_90_days"`
}

// Dashboard compares what was claimed with what was paid.
type Dashboard struct {
	TotalSubmitted decimal.Decimal `json:"total_submitted"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalPending   decimal.Decimal `json:"total_pending"`
	ShortPayAmount decimal.Decimal `json:"short_pay_amount"`
	Aging          Aging           `json:"aging"`
	ShortPays      []ShortPay      `json:"short_pays,omitempty"`
}

// VarianceDashboard summarises receivables as of now.
func VarianceDashboard(items []Receivable, now time.Time) Dashboard {
	d := Dashboard{
		TotalSubmitted: decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalPending:   decimal.Zero,
		ShortPayAmount: decimal.Zero,
	}
	for _, r := range items {
		claimed := r.Claimed
		if claimed.IsZero() {
			claimed = r.AmountDue
		}
		d.TotalSubmitted = d.TotalSubmitted.Add(claimed)
		if r.AmountPaid != nil {
			d.TotalPaid = d.TotalPaid.Add(*r.AmountPaid)
			if r.AmountPaid.LessThan(r.AmountDue) {
				short := r.AmountDue.Sub(*r.AmountPaid)
				d.ShortPayAmount = d.ShortPayAmount.Add(short)
				d.ShortPays = append(d.ShortPays, ShortPay{
					ClaimID:   r.ClaimID,
					Expected:  r.AmountDue,
					Received:  *r.AmountPaid,
					Shortfall: short,
				})
			}
			continue
		}
		d.TotalPending = d.TotalPending.Add(r.AmountDue)
		if r.SubmittedAt == nil {
			continue
		}
		switch days := int(now.Sub(*r.SubmittedAt) / day); {
		case days < 30:
			d.Aging.Under30++
		case days < 60:
			d.Aging.Days30to60++
		case days < 90:
			d.Aging.Days60to90++
		default:
			d.Aging.Over90++
		}
	}
	sort.Slice(d.ShortPays, func(i, j int) bool { return d.ShortPays[i].ClaimID < d.ShortPays[j].ClaimID })
	return d
}
