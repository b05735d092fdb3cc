package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	trace "uppf-claims/internal/trace/domain"
)

const defaultTracesTable = "uppf_traces"

// TraceStore persists traces with their samples as JSONB.
type TraceStore struct {
	db    *sql.DB
	table string
}

// TraceStoreOption configures a TraceStore.
type TraceStoreOption func(*TraceStore)

// WithTracesTable overrides the table name.
func WithTracesTable(table string) TraceStoreOption {
	return func(s *TraceStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewTraceStore constructs a store.
func NewTraceStore(db *sql.DB, opts ...TraceStoreOption) *TraceStore {
	s := &TraceStore{db: db, table: defaultTracesTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get loads a trace by consignment id.
func (s *TraceStore) Get(ctx context.Context, consignmentID string) (*trace.Trace, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("trace store: nil db")
	}
	var (
		t           trace.Trace
		samples     []byte
		completedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
SELECT consignment_id, vehicle_id, samples, completed, completed_at
FROM `+s.table+`
WHERE consignment_id = $1`, consignmentID).Scan(&t.ConsignmentID, &t.VehicleID, &samples, &t.Completed, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, trace.ErrTraceNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(samples, &t.Samples); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		at := completedAt.Time.UTC()
		t.CompletedAt = &at
	}
	return &t, nil
}

// Save upserts a trace. A completed trace is never reopened.
func (s *TraceStore) Save(ctx context.Context, t *trace.Trace) error {
	if s == nil || s.db == nil {
		return errors.New("trace store: nil db")
	}
	if t == nil || t.ConsignmentID == "" {
		return trace.ErrEmptyConsignmentID
	}
	samples, err := json.Marshal(t.Samples)
	if err != nil {
		return err
	}
	var completedAt sql.NullTime
	if t.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *t.CompletedAt, Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO `+s.table+` (consignment_id, vehicle_id, samples, completed, completed_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (consignment_id) DO UPDATE SET
	samples = EXCLUDED.samples,
	completed = EXCLUDED.completed,
	completed_at = EXCLUDED.completed_at,
	updated_at = NOW()
WHERE `+s.table+`.completed = FALSE`,
		t.ConsignmentID, t.VehicleID, samples, t.Completed, completedAt)
	return err
}
