package application

import (
	"context"
	"time"

	claims "uppf-claims/internal/claims/domain"
	reconciliation "uppf-claims/internal/reconciliation/domain"
	route "uppf-claims/internal/route/domain"
	trace "uppf-claims/internal/trace/domain"
)

// Consignment is one delivery leg eligible for a claim.
type Consignment struct {
	ID           string             `json:"id"`
	VehicleID    string             `json:"vehicle_id"`
	RouteID      string             `json:"route_id"`
	WindowID     string             `json:"window_id"`
	Product      claims.ProductType `json:"product"`
	PlannedRoute []trace.GeoPoint   `json:"planned_route"`
	DeliveredAt  time.Time          `json:"delivered_at"`
}

// ReconciliationAudit is the stored, immutable record of one
// reconciliation run.
type ReconciliationAudit struct {
	ID            string                `json:"id"`
	ConsignmentID string                `json:"consignment_id"`
	Record        reconciliation.Record `json:"record"`
	CreatedAt     time.Time             `json:"created_at"`
}

//go:generate mockgen -destination=mocks/mock_ports.go -package=mock_application -source=ports.go

// TraceSource supplies the trace of a consignment. A missing trace is
// trace.ErrTraceNotFound.
type TraceSource interface {
	Get(ctx context.Context, consignmentID string) (*trace.Trace, error)
}

// ReferenceData looks up reference data. Misses wrap
// claims.ErrReferenceNotFound.
type ReferenceData interface {
	EqualisationPoint(ctx context.Context, routeID string, at time.Time) (route.EqualisationPoint, error)
	AuthorizedStops(ctx context.Context, routeID string) ([]trace.GeoPoint, error)
	Tariffs(ctx context.Context) (claims.Tariffs, error)
	ToleranceFactors(ctx context.Context, routeID string, product claims.ProductType) (reconciliation.ToleranceFactors, error)
}

// VolumeSource supplies the depot, transporter and station records of a
// consignment. Missing records are returned zero-valued.
type VolumeSource interface {
	Volumes(ctx context.Context, consignmentID string) (reconciliation.Triple, error)
}

// EvidenceStore reports which documents support a consignment.
type EvidenceStore interface {
	Evidence(ctx context.Context, consignmentID string) (claims.Evidence, error)
}

// ClaimRepository persists claims. Update succeeds only while the stored
// claim is still in status from.
type ClaimRepository interface {
	Create(ctx context.Context, c *claims.Claim) error
	Get(ctx context.Context, id string) (*claims.Claim, error)
	FindByConsignment(ctx context.Context, consignmentID string) (*claims.Claim, error)
	Update(ctx context.Context, c *claims.Claim, from claims.Status) error
	ListByStatus(ctx context.Context, status claims.Status, windowID string) ([]*claims.Claim, error)
}

// ReconciliationStore keeps reconciliation audit records. Records are
// inserted once and never updated.
type ReconciliationStore interface {
	Insert(ctx context.Context, audit ReconciliationAudit) error
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// ConsignmentSource enumerates completed consignments that have no claim.
type ConsignmentSource interface {
	PendingClaims(ctx context.Context, limit int) ([]Consignment, error)
}

// Sequence issues claim number sequence values per day.
type Sequence interface {
	Next(ctx context.Context, day time.Time) (int64, error)
}
