package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"uppf-claims/internal/claims/application"
	claims "uppf-claims/internal/claims/domain"
	reconciliation "uppf-claims/internal/reconciliation/domain"
)

const defaultConsignmentsTable = "uppf_consignments"

// ConsignmentStore reads consignments with their volume and evidence
// documents, which are kept as JSONB.
type ConsignmentStore struct {
	db          DBTX
	table       string
	claimsTable string
}

// NewConsignmentStore constructs a store.
func NewConsignmentStore(db DBTX) *ConsignmentStore {
	return &ConsignmentStore{db: db, table: defaultConsignmentsTable, claimsTable: defaultClaimsTable}
}

// PendingClaims lists delivered consignments without a claim, ordered by
// delivery time then id.
func (s *ConsignmentStore) PendingClaims(ctx context.Context, limit int) ([]application.Consignment, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("consignment store: nil db")
	}
	if limit <= 0 {
		limit = 500
	}
	query := fmt.Sprintf(`
SELECT k.id, k.vehicle_id, k.route_id, k.window_id, k.product, k.planned_route, k.delivered_at
FROM %s k
WHERE k.delivered_at IS NOT NULL
	AND NOT EXISTS (SELECT 1 FROM %s c WHERE c.consignment_id = k.id)
ORDER BY k.delivered_at ASC, k.id ASC
LIMIT $1`, s.table, s.claimsTable)
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []application.Consignment
	for rows.Next() {
		var (
			c       application.Consignment
			planned []byte
		)
		if err := rows.Scan(&c.ID, &c.VehicleID, &c.RouteID, &c.WindowID, &c.Product, &planned, &c.DeliveredAt); err != nil {
			return nil, err
		}
		if len(planned) > 0 {
			if err := json.Unmarshal(planned, &c.PlannedRoute); err != nil {
				return nil, fmt.Errorf("consignment %s: planned route: %w", c.ID, err)
			}
		}
		c.DeliveredAt = c.DeliveredAt.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// Volumes returns the volume records of a consignment.
func (s *ConsignmentStore) Volumes(ctx context.Context, consignmentID string) (reconciliation.Triple, error) {
	var v reconciliation.Triple
	if err := s.document(ctx, "volumes", consignmentID, &v); err != nil {
		return reconciliation.Triple{}, err
	}
	v.ConsignmentID = consignmentID
	return v, nil
}

// Evidence returns the evidence checklist of a consignment.
func (s *ConsignmentStore) Evidence(ctx context.Context, consignmentID string) (claims.Evidence, error) {
	var e claims.Evidence
	if err := s.document(ctx, "evidence", consignmentID, &e); err != nil {
		return claims.Evidence{}, err
	}
	return e, nil
}

func (s *ConsignmentStore) document(ctx context.Context, column, id string, dst any) error {
	if s == nil || s.db == nil {
		return errors.New("consignment store: nil db")
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, column, s.table)
	var raw []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("consignment %s: %w", id, claims.ErrReferenceNotFound)
	}
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
