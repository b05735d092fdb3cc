package memory

import (
	"context"
	"sync"
	"time"
)

// Sequence issues per-day counters starting at 1.
type Sequence struct {
	mu   sync.Mutex
	last map[string]int64
}

// NewSequence constructs a sequence.
func NewSequence() *Sequence {
	return &Sequence{last: make(map[string]int64)}
}

// Next returns the next value for the UTC day of day.
func (s *Sequence) Next(ctx context.Context, day time.Time) (int64, error) {
	_ = ctx
	key := day.UTC().Format("2006-01-02")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[key]++
	return s.last[key], nil
}
