package settlement

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	claims "uppf-claims/internal/claims/domain"
)

// Status is the lifecycle state of a settlement.
type Status string

const (
	StatusPending          Status = "pending"
	StatusProcessing       Status = "processing"
	StatusReconciled       Status = "reconciled"
	StatusVarianceDetected Status = "variance_detected"
)

// VarianceAnalysis explains a payment outside tolerance.
type VarianceAnalysis struct {
	Expected           decimal.Decimal `json:"expected"`
	Actual             decimal.Decimal `json:"actual"`
	Variance           decimal.Decimal `json:"variance"`
	VariancePct        float64         `json:"variance_pct"`
	PossibleCauses     []string        `json:"possible_causes"`
	RecommendedActions []string        `json:"recommended_actions,omitempty"`
}

// Allocation is the share of the actual payment attributed to a claim.
type Allocation struct {
	ClaimID string          `json:"claim_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// Settlement is the financial result of one window's approved claims.
type Settlement struct {
	ID        string       `json:"id"`
	Reference string       `json:"reference"`
	WindowID  string       `json:"window_id"`
	Status    Status       `json:"status"`
	Lines     []LineResult `json:"lines"`

	TotalClaimed    decimal.Decimal `json:"total_claimed"`
	ProcessingFees  decimal.Decimal `json:"processing_fees"`
	Penalties       decimal.Decimal `json:"penalties"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalBonuses    decimal.Decimal `json:"total_bonuses"`
	NetAmount       decimal.Decimal `json:"net_amount"`

	PaymentRef     string            `json:"payment_ref,omitempty"`
	ActualReceived *decimal.Decimal  `json:"actual_received,omitempty"`
	Variance       *decimal.Decimal  `json:"variance,omitempty"`
	VariancePct    float64           `json:"variance_pct"`
	Analysis       *VarianceAnalysis `json:"analysis,omitempty"`
	Allocations    []Allocation      `json:"allocations,omitempty"`

	CreatedAt           time.Time  `json:"created_at"`
	ProcessingStartedAt *time.Time `json:"processing_started_at,omitempty"`
	ReconciledAt        *time.Time `json:"reconciled_at,omitempty"`
}

// ClaimIDs returns the ids of the settled claims in line order.
func (s *Settlement) ClaimIDs() []string {
	ids := make([]string, 0, len(s.Lines))
	for _, l := range s.Lines {
		ids = append(ids, l.ClaimID)
	}
	return ids
}

// Reconciled reports whether a payment has been recorded.
func (s *Settlement) Reconciled() bool {
	return s.ReconciledAt != nil
}

// Clone returns a deep copy.
func (s *Settlement) Clone() *Settlement {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Lines = append([]LineResult(nil), s.Lines...)
	cp.Allocations = append([]Allocation(nil), s.Allocations...)
	if s.Analysis != nil {
		a := *s.Analysis
		a.PossibleCauses = append([]string(nil), s.Analysis.PossibleCauses...)
		a.RecommendedActions = append([]string(nil), s.Analysis.RecommendedActions...)
		cp.Analysis = &a
	}
	return &cp
}

// Request is the input to Settle.
type Request struct {
	ID        string
	Reference string
	Window    Window
	Lines     []ClaimLine
	At        time.Time
}

// Settle builds a settlement from the approved lines of a window. Lines
// are computed concurrently and summed in claim id order. Lines that break
// a rule are returned as rejections; the call fails only when none remain.
func Settle(req Request, p Policy) (*Settlement, []Rejection, error) {
	if req.Window.ID == "" {
		return nil, nil, ErrEmptyWindowID
	}

	accepted, rejections := screen(req.Window, req.Lines)
	if len(accepted) == 0 {
		return nil, rejections, ErrNoApprovedClaims
	}

	results := make([]LineResult, len(accepted))
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range accepted {
		i := i
		g.Go(func() error {
			results[i] = ComputeLine(accepted[i], req.Window, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, rejections, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ClaimID < results[j].ClaimID })

	s := &Settlement{
		ID:              req.ID,
		Reference:       req.Reference,
		WindowID:        req.Window.ID,
		Status:          StatusPending,
		Lines:           results,
		TotalClaimed:    decimal.Zero,
		ProcessingFees:  decimal.Zero,
		Penalties:       decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalBonuses:    decimal.Zero,
		NetAmount:       decimal.Zero,
		CreatedAt:       req.At.UTC(),
	}
	for _, r := range results {
		s.TotalClaimed = s.TotalClaimed.Add(r.Amount)
		s.ProcessingFees = s.ProcessingFees.Add(r.ProcessingFee)
		s.Penalties = s.Penalties.Add(r.Deductions.Sub(r.ProcessingFee))
		s.TotalDeductions = s.TotalDeductions.Add(r.Deductions)
		s.TotalBonuses = s.TotalBonuses.Add(r.Bonuses)
		s.NetAmount = s.NetAmount.Add(r.Net)
	}
	return s, rejections, nil
}

func screen(window Window, lines []ClaimLine) ([]ClaimLine, []Rejection) {
	var (
		accepted   []ClaimLine
		rejections []Rejection
		seen       = make(map[string]bool, len(lines))
	)
	for _, l := range lines {
		var rule string
		switch {
		case l.ClaimID == "":
			rule = "claim id is required"
		case seen[l.ClaimID]:
			rule = "claim appears more than once in the batch"
		case l.Status != claims.StatusApproved:
			rule = fmt.Sprintf("claim must be approved to settle, is %s", l.Status)
		case l.WindowID != "" && l.WindowID != window.ID:
			rule = fmt.Sprintf("claim belongs to window %s", l.WindowID)
		case l.Amount.IsNegative():
			rule = "claim amount is negative"
		}
		if l.ClaimID != "" {
			seen[l.ClaimID] = true
		}
		if rule != "" {
			rejections = append(rejections, Rejection{ClaimID: l.ClaimID, Rule: rule})
			continue
		}
		accepted = append(accepted, l)
	}
	sort.Slice(rejections, func(i, j int) bool { return rejections[i].ClaimID < rejections[j].ClaimID })
	return accepted, rejections
}

// StartProcessing records the payment reference and moves a pending
// settlement to processing.
func (s *Settlement) StartProcessing(paymentRef string, at time.Time) error {
	if s.Status != StatusPending {
		return &TransitionError{SettlementID: s.ID, From: s.Status, To: StatusProcessing}
	}
	at = at.UTC()
	s.Status = StatusProcessing
	s.PaymentRef = paymentRef
	s.ProcessingStartedAt = &at
	return nil
}

// ReconcilePayment records the amount actually paid. It runs once; the
// payment is spread over the claims pro rata to their net amounts.
func (s *Settlement) ReconcilePayment(actual decimal.Decimal, at time.Time, p Policy) error {
	if s.Reconciled() {
		return ErrAlreadyReconciled
	}
	if actual.IsNegative() {
		return ErrNegativeValue
	}

	variance := actual.Sub(s.NetAmount)
	pct := variancePct(variance, s.NetAmount)

	at = at.UTC()
	s.ActualReceived = &actual
	s.Variance = &variance
	s.VariancePct = pct
	s.ReconciledAt = &at
	s.Allocations = allocate(s.Lines, s.NetAmount, actual)

	if abs(pct) <= p.PaymentTolerancePct {
		s.Status = StatusReconciled
		return nil
	}
	s.Status = StatusVarianceDetected
	s.Analysis = &VarianceAnalysis{
		Expected:           s.NetAmount,
		Actual:             actual,
		Variance:           variance,
		VariancePct:        pct,
		PossibleCauses:     varianceCauses(pct),
		RecommendedActions: varianceActions(pct),
	}
	return nil
}

func variancePct(variance, expected decimal.Decimal) float64 {
	if expected.IsZero() {
		switch variance.Sign() {
		case 0:
			return 0
		case 1:
			return 100
		default:
			return -100
		}
	}
	pct, _ := variance.Div(expected).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// allocate splits actual across lines pro rata to net. The rounding
// remainder goes to the line with the largest net so the shares sum to
// actual exactly.
func allocate(lines []LineResult, net, actual decimal.Decimal) []Allocation {
	out := make([]Allocation, len(lines))
	if !net.IsPositive() {
		for i, l := range lines {
			out[i] = Allocation{ClaimID: l.ClaimID, Amount: decimal.Zero}
		}
		return out
	}
	sum := decimal.Zero
	largest := 0
	for i, l := range lines {
		share := actual.Mul(l.Net).Div(net).Round(2)
		out[i] = Allocation{ClaimID: l.ClaimID, Amount: share}
		sum = sum.Add(share)
		if l.Net.GreaterThan(lines[largest].Net) {
			largest = i
		}
	}
	out[largest].Amount = out[largest].Amount.Add(actual.Sub(sum))
	return out
}

func varianceCauses(pct float64) []string {
	var causes []string
	if abs(pct) > 5 {
		causes = append(causes, "Significant payment variance, investigate calculation errors")
	}
	if pct > 0 {
		causes = append(causes, "Overpayment detected, possible duplicate payment or calculation error")
	} else {
		causes = append(causes, "Underpayment detected, possible missing claims or calculation error")
	}
	return causes
}

func varianceActions(pct float64) []string {
	if abs(pct) <= 1 {
		return []string{"Confirm the bank transaction against the settlement reference"}
	}
	return []string{
		"Conduct detailed review of calculation methodology",
		"Verify all claims included in settlement",
		"Check for processing errors or system issues",
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// FormatReference renders UPPF-SETTLEMENT-YYYYMM-NNNN.
func FormatReference(at time.Time, seq int64) string {
	return fmt.Sprintf("UPPF-SETTLEMENT-%s-%04d", at.UTC().Format("200601"), seq)
}
