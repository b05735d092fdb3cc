package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const defaultAuditTable = "uppf_audit_log"

// Repository writes audit entries to Postgres.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository constructs an audit repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db, table: defaultAuditTable}
}

// Log writes an audit entry. A replayed event is ignored.
func (r *Repository) Log(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}

	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s (
	id, event_id, action, resource_id, correlation_id,
	metadata, payload_digest, occurred_at, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9
)
ON CONFLICT (event_id) DO NOTHING`, r.table),
		entry.ID, entry.EventID, entry.Action, entry.ResourceID, entry.CorrelationID,
		[]byte(entry.Metadata), entry.PayloadDigest, entry.OccurredAt, entry.CreatedAt)
	return err
}
