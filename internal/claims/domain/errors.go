package claims

import (
	"errors"
	"fmt"
)

var (
	// ErrReferenceNotFound marks missing reference data (tariff, equalisation
	// point). It halts only the affected unit of work.
	ErrReferenceNotFound = errors.New("claims: reference not found")
	// ErrTariffNotFound is returned for a product without a base rate.
	ErrTariffNotFound = fmt.Errorf("claims: tariff not found: %w", ErrReferenceNotFound)
	// ErrIllegalTransition is wrapped by every TransitionError.
	ErrIllegalTransition = errors.New("claims: illegal status transition")
	// ErrEmptyConsignmentID is returned when a claim input has no consignment id.
	ErrEmptyConsignmentID = errors.New("claims: empty consignment id")
	// ErrEmptyClaimNumber is returned when a claim input has no claim number.
	ErrEmptyClaimNumber = errors.New("claims: empty claim number")
	// ErrClaimNotFound is returned when a claim does not exist.
	ErrClaimNotFound = errors.New("claims: claim not found")
	// ErrClaimExists is returned when a consignment already has a claim.
	ErrClaimExists = errors.New("claims: claim already exists for consignment")
	// ErrStaleClaim is returned when a claim changed status since it was read.
	ErrStaleClaim = errors.New("claims: claim modified concurrently")
)

// TransitionError reports a rejected status change.
type TransitionError struct {
	ClaimID string
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("claims: claim %s cannot move from %s to %s", e.ClaimID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}
