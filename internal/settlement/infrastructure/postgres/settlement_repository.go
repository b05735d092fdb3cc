package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	settlement "uppf-claims/internal/settlement/domain"
)

const (
	defaultSettlementsTable = "uppf_settlements"
	defaultSequencesTable   = "uppf_settlement_sequences"
)

// SettlementRepository persists settlements as JSONB with the queried
// fields as columns.
type SettlementRepository struct {
	db             *sql.DB
	table          string
	sequencesTable string
}

// SettlementOption configures the repository.
type SettlementOption func(*SettlementRepository)

// WithSettlementsTable overrides the default table name.
func WithSettlementsTable(table string) SettlementOption {
	return func(r *SettlementRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewSettlementRepository constructs a repository.
func NewSettlementRepository(db *sql.DB, opts ...SettlementOption) *SettlementRepository {
	r := &SettlementRepository{db: db, table: defaultSettlementsTable, sequencesTable: defaultSequencesTable}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save inserts a settlement. window_id is unique.
func (r *SettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	if r == nil || r.db == nil {
		return errors.New("settlement repo: nil db")
	}
	if s == nil {
		return settlement.ErrNilSettlement
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	reference,
	window_id,
	status,
	net_amount,
	payment_ref,
	payload,
	created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)
ON CONFLICT (window_id) DO NOTHING`, r.table)
	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.Reference, s.WindowID, s.Status, s.NetAmount, s.PaymentRef, payload, s.CreatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return settlement.ErrSettlementExists
	}
	return nil
}

// Update rewrites status and payment fields. The guard on reconciled_at
// keeps payment reconciliation a one-time write.
func (r *SettlementRepository) Update(ctx context.Context, s *settlement.Settlement) error {
	if r == nil || r.db == nil {
		return errors.New("settlement repo: nil db")
	}
	if s == nil {
		return settlement.ErrNilSettlement
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
UPDATE %s
SET status = $1, payment_ref = $2, payload = $3, updated_at = NOW()
WHERE id = $4 AND payload->>'reconciled_at' IS NULL`, r.table)
	res, err := r.db.ExecContext(ctx, query, s.Status, s.PaymentRef, payload, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.Get(ctx, s.ID); err != nil {
		return err
	}
	return settlement.ErrAlreadyReconciled
}

// Get loads a settlement by id.
func (r *SettlementRepository) Get(ctx context.Context, id string) (*settlement.Settlement, error) {
	return r.getBy(ctx, "id", id)
}

// FindByWindow loads the settlement of a window.
func (r *SettlementRepository) FindByWindow(ctx context.Context, windowID string) (*settlement.Settlement, error) {
	return r.getBy(ctx, "window_id", windowID)
}

func (r *SettlementRepository) getBy(ctx context.Context, column, value string) (*settlement.Settlement, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE %s = $1 LIMIT 1`, r.table, column)
	var payload []byte
	err := r.db.QueryRowContext(ctx, query, value).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, settlement.ErrSettlementNotFound
	}
	if err != nil {
		return nil, err
	}
	var s settlement.Settlement
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}

// NextSequence returns the next reference sequence of a month.
func (r *SettlementRepository) NextSequence(ctx context.Context, month string) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("settlement repo: nil db")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (month, value) VALUES ($1, 1)
ON CONFLICT (month) DO UPDATE SET value = %s.value + 1
RETURNING value`, r.sequencesTable, r.sequencesTable)
	var value int64
	if err := r.db.QueryRowContext(ctx, query, month).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
