package settlement

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyWindowID is returned when a settlement request has no window.
	ErrEmptyWindowID = errors.New("settlement: empty window id")
	// ErrNoApprovedClaims is returned when every line of a batch was rejected.
	ErrNoApprovedClaims = errors.New("settlement: no approved claims")
	// ErrNegativeValue is returned when a negative payment is provided.
	ErrNegativeValue = errors.New("settlement: negative value")
	// ErrAlreadyReconciled is returned by a second payment reconciliation.
	ErrAlreadyReconciled = errors.New("settlement: already reconciled")
	// ErrIllegalTransition is wrapped by every TransitionError.
	ErrIllegalTransition = errors.New("settlement: illegal status transition")
	// ErrNilSettlement is returned when saving a nil settlement.
	ErrNilSettlement = errors.New("settlement: nil settlement")
	// ErrSettlementNotFound is returned when a settlement is not found.
	ErrSettlementNotFound = errors.New("settlement: not found")
	// ErrSettlementExists is returned when a window already has a settlement.
	ErrSettlementExists = errors.New("settlement: window already settled")
)

// TransitionError reports a rejected settlement status change.
type TransitionError struct {
	SettlementID string
	From         Status
	To           Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("settlement: %s cannot move from %s to %s", e.SettlementID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}
