package memory

import (
	"context"
	"errors"
	"sync"

	"uppf-claims/internal/claims/application"
)

// ReconciliationStore keeps reconciliation audits in insertion order.
type ReconciliationStore struct {
	mu     sync.RWMutex
	audits []application.ReconciliationAudit
	ids    map[string]struct{}
}

// NewReconciliationStore constructs a store.
func NewReconciliationStore() *ReconciliationStore {
	return &ReconciliationStore{ids: make(map[string]struct{})}
}

// Insert appends an audit. Ids are never reused.
func (s *ReconciliationStore) Insert(ctx context.Context, audit application.ReconciliationAudit) error {
	_ = ctx
	if audit.ID == "" {
		return errors.New("reconciliation store: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[audit.ID]; ok {
		return errors.New("reconciliation store: duplicate id " + audit.ID)
	}
	s.ids[audit.ID] = struct{}{}
	s.audits = append(s.audits, audit)
	return nil
}

// ListByConsignment returns the audits of a consignment, oldest first.
func (s *ReconciliationStore) ListByConsignment(ctx context.Context, consignmentID string) ([]application.ReconciliationAudit, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []application.ReconciliationAudit
	for _, a := range s.audits {
		if a.ConsignmentID == consignmentID {
			out = append(out, a)
		}
	}
	return out, nil
}
