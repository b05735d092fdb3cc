package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	claims "uppf-claims/internal/claims/domain"
)

const defaultClaimsTable = "uppf_claims"

// ClaimRepository persists claims. Queried fields are columns; the full
// claim is kept as JSONB.
type ClaimRepository struct {
	db    DBTX
	table string
}

// ClaimOption configures the repository.
type ClaimOption func(*ClaimRepository)

// WithClaimsTable overrides the default table name.
func WithClaimsTable(table string) ClaimOption {
	return func(repo *ClaimRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewClaimRepository constructs a repository.
func NewClaimRepository(db DBTX, opts ...ClaimOption) *ClaimRepository {
	repo := &ClaimRepository{db: db, table: defaultClaimsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Create inserts a claim. The consignment_id and claim_number columns are
// unique.
func (r *ClaimRepository) Create(ctx context.Context, c *claims.Claim) error {
	if r == nil || r.db == nil {
		return errors.New("claim repo: nil db")
	}
	if c == nil || c.ConsignmentID == "" {
		return claims.ErrEmptyConsignmentID
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	claim_number,
	consignment_id,
	window_id,
	status,
	disposition,
	total_amount,
	payload,
	created_at,
	updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)`, r.table)
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.ClaimNumber,
		c.ConsignmentID,
		c.WindowID,
		c.Status,
		c.Disposition,
		c.TotalAmount,
		payload,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("consignment %s: %w", c.ConsignmentID, claims.ErrClaimExists)
	}
	return err
}

// Get loads a claim by id.
func (r *ClaimRepository) Get(ctx context.Context, id string) (*claims.Claim, error) {
	return r.getBy(ctx, "id", id)
}

// FindByConsignment loads the claim of a consignment.
func (r *ClaimRepository) FindByConsignment(ctx context.Context, consignmentID string) (*claims.Claim, error) {
	return r.getBy(ctx, "consignment_id", consignmentID)
}

func (r *ClaimRepository) getBy(ctx context.Context, column, value string) (*claims.Claim, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("claim repo: nil db")
	}
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE %s = $1 LIMIT 1`, r.table, column)
	var payload []byte
	err := r.db.QueryRowContext(ctx, query, value).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, claims.ErrClaimNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeClaim(payload)
}

// Update writes a claim only while its stored status is still from.
func (r *ClaimRepository) Update(ctx context.Context, c *claims.Claim, from claims.Status) error {
	if r == nil || r.db == nil {
		return errors.New("claim repo: nil db")
	}
	if c == nil {
		return claims.ErrClaimNotFound
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
UPDATE %s
SET status = $1, payload = $2, updated_at = $3
WHERE id = $4 AND status = $5`, r.table)
	res, err := r.db.ExecContext(ctx, query, c.Status, payload, c.UpdatedAt, c.ID, from)
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
	if _, err := r.Get(ctx, c.ID); err != nil {
		return err
	}
	return claims.ErrStaleClaim
}

// ListByStatus lists claims in a status ordered by claim number. An empty
// windowID matches every window.
func (r *ClaimRepository) ListByStatus(ctx context.Context, status claims.Status, windowID string) ([]*claims.Claim, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("claim repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT payload
FROM %s
WHERE status = $1 AND ($2 = '' OR window_id = $2)
ORDER BY claim_number ASC`, r.table)
	rows, err := r.db.QueryContext(ctx, query, status, windowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*claims.Claim
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		c, err := decodeClaim(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func decodeClaim(payload []byte) (*claims.Claim, error) {
	var c claims.Claim
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}
