package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const defaultSequencesTable = "uppf_claim_sequences"

// Sequence issues per-day claim number values from a counter row.
type Sequence struct {
	db    DBTX
	table string
}

// NewSequence constructs a sequence.
func NewSequence(db DBTX) *Sequence {
	return &Sequence{db: db, table: defaultSequencesTable}
}

// Next increments and returns the counter of the UTC day of day.
func (s *Sequence) Next(ctx context.Context, day time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("sequence: nil db")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (day, value) VALUES ($1, 1)
ON CONFLICT (day) DO UPDATE SET value = %s.value + 1
RETURNING value`, s.table, s.table)
	var value int64
	if err := s.db.QueryRowContext(ctx, query, day.UTC().Format("2006-01-02")).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
