package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"uppf-claims/internal/claims/application"
)

const defaultReconciliationsTable = "uppf_reconciliation_audits"

// ReconciliationStore appends reconciliation audits. Rows are never
// updated.
type ReconciliationStore struct {
	db    DBTX
	table string
}

// NewReconciliationStore constructs a store.
func NewReconciliationStore(db DBTX) *ReconciliationStore {
	return &ReconciliationStore{db: db, table: defaultReconciliationsTable}
}

// Insert stores one audit.
func (s *ReconciliationStore) Insert(ctx context.Context, audit application.ReconciliationAudit) error {
	if s == nil || s.db == nil {
		return errors.New("reconciliation store: nil db")
	}
	record, err := json.Marshal(audit.Record)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, consignment_id, status, confidence, record, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`, s.table)
	_, err = s.db.ExecContext(ctx, query,
		audit.ID,
		audit.ConsignmentID,
		audit.Record.Status,
		audit.Record.Summary.Confidence,
		record,
		audit.CreatedAt,
	)
	return err
}
