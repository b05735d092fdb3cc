package memory

import (
	"context"
	"sync"

	settlement "uppf-claims/internal/settlement/domain"
)

// SettlementRepository keeps settlements in memory.
type SettlementRepository struct {
	mu        sync.RWMutex
	byID      map[string]*settlement.Settlement
	byWindow  map[string]string
	sequences map[string]int64
}

// NewSettlementRepository constructs an empty repository.
func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{
		byID:      make(map[string]*settlement.Settlement),
		byWindow:  make(map[string]string),
		sequences: make(map[string]int64),
	}
}

// Save inserts a settlement. A window is settled once.
func (r *SettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	_ = ctx
	if s == nil {
		return settlement.ErrNilSettlement
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byWindow[s.WindowID]; ok {
		return settlement.ErrSettlementExists
	}
	if _, ok := r.byID[s.ID]; ok {
		return settlement.ErrSettlementExists
	}
	r.byID[s.ID] = s.Clone()
	r.byWindow[s.WindowID] = s.ID
	return nil
}

// Update replaces a stored settlement. A recorded payment is never
// overwritten.
func (r *SettlementRepository) Update(ctx context.Context, s *settlement.Settlement) error {
	_ = ctx
	if s == nil {
		return settlement.ErrNilSettlement
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[s.ID]
	if !ok {
		return settlement.ErrSettlementNotFound
	}
	if stored.Reconciled() {
		return settlement.ErrAlreadyReconciled
	}
	r.byID[s.ID] = s.Clone()
	return nil
}

// Get loads a settlement by id.
func (r *SettlementRepository) Get(ctx context.Context, id string) (*settlement.Settlement, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, settlement.ErrSettlementNotFound
	}
	return s.Clone(), nil
}

// FindByWindow loads the settlement of a window.
func (r *SettlementRepository) FindByWindow(ctx context.Context, windowID string) (*settlement.Settlement, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byWindow[windowID]
	if !ok {
		return nil, settlement.ErrSettlementNotFound
	}
	return r.byID[id].Clone(), nil
}

// NextSequence returns the next reference sequence of a month.
func (r *SettlementRepository) NextSequence(ctx context.Context, month string) (int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequences[month]++
	return r.sequences[month], nil
}
