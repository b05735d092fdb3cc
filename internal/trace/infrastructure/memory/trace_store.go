package memory

import (
	"context"
	"sync"

	trace "uppf-claims/internal/trace/domain"
)

// TraceStore is an in-memory trace store.
type TraceStore struct {
	mu   sync.RWMutex
	data map[string]*trace.Trace
}

// NewTraceStore constructs a store.
func NewTraceStore() *TraceStore {
	return &TraceStore{data: make(map[string]*trace.Trace)}
}

// Get loads a trace by consignment id.
func (s *TraceStore) Get(ctx context.Context, consignmentID string) (*trace.Trace, error) {
	_ = ctx
	s.mu.RLock()
	t := s.data[consignmentID]
	s.mu.RUnlock()
	if t == nil {
		return nil, trace.ErrTraceNotFound
	}
	return t.Clone(), nil
}

// Save stores a copy of the trace.
func (s *TraceStore) Save(ctx context.Context, t *trace.Trace) error {
	_ = ctx
	if t == nil || t.ConsignmentID == "" {
		return trace.ErrEmptyConsignmentID
	}
	s.mu.Lock()
	s.data[t.ConsignmentID] = t.Clone()
	s.mu.Unlock()
	return nil
}
