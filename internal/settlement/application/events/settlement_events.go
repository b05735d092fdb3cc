package events

import "time"

// SettlementCreated is emitted when a window's approved claims are settled.
type SettlementCreated struct {
	EventID      string
	SettlementID string
	Reference    string
	WindowID     string
	Claims       int
	Rejected     int
	NetAmount    string
	OccurredAt   time.Time
}

// SettlementReconciled is emitted when the actual payment of a settlement
// has been recorded.
type SettlementReconciled struct {
	EventID      string
	SettlementID string
	Reference    string
	Status       string
	Expected     string
	Actual       string
	VariancePct  float64
	OccurredAt   time.Time
}
