package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"uppf-claims/internal/claims/application"
	claims "uppf-claims/internal/claims/domain"
	reconciliation "uppf-claims/internal/reconciliation/domain"
)

// ConsignmentRecord is a consignment with its volume and evidence records.
type ConsignmentRecord struct {
	Consignment application.Consignment `json:"consignment"`
	Volumes     reconciliation.Triple   `json:"volumes"`
	Evidence    claims.Evidence         `json:"evidence"`
}

// ConsignmentStore serves consignments, their volumes and their evidence.
type ConsignmentStore struct {
	mu      sync.RWMutex
	records map[string]ConsignmentRecord
	claims  application.ClaimRepository
}

// NewConsignmentStore constructs a store. Consignments with a claim in
// repo are not pending.
func NewConsignmentStore(repo application.ClaimRepository) (*ConsignmentStore, error) {
	if repo == nil {
		return nil, errors.New("consignment store: nil claim repository")
	}
	return &ConsignmentStore{records: make(map[string]ConsignmentRecord), claims: repo}, nil
}

// Put adds or replaces a consignment record.
func (s *ConsignmentStore) Put(rec ConsignmentRecord) error {
	if rec.Consignment.ID == "" {
		return claims.ErrEmptyConsignmentID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Consignment.ID] = rec
	return nil
}

// PendingClaims lists delivered consignments without a claim, ordered by
// delivery time then id.
func (s *ConsignmentStore) PendingClaims(ctx context.Context, limit int) ([]application.Consignment, error) {
	s.mu.RLock()
	all := make([]application.Consignment, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Consignment.DeliveredAt.IsZero() {
			continue
		}
		all = append(all, rec.Consignment)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].DeliveredAt.Equal(all[j].DeliveredAt) {
			return all[i].DeliveredAt.Before(all[j].DeliveredAt)
		}
		return all[i].ID < all[j].ID
	})

	var out []application.Consignment
	for _, c := range all {
		if limit > 0 && len(out) >= limit {
			break
		}
		_, err := s.claims.FindByConsignment(ctx, c.ID)
		switch {
		case errors.Is(err, claims.ErrClaimNotFound):
			out = append(out, c)
		case err != nil:
			return nil, err
		}
	}
	return out, nil
}

// Volumes returns the volume records of a consignment.
func (s *ConsignmentStore) Volumes(ctx context.Context, consignmentID string) (reconciliation.Triple, error) {
	_ = ctx
	rec, err := s.get(consignmentID)
	if err != nil {
		return reconciliation.Triple{}, err
	}
	v := rec.Volumes
	v.ConsignmentID = consignmentID
	return v, nil
}

// Evidence returns the evidence checklist of a consignment.
func (s *ConsignmentStore) Evidence(ctx context.Context, consignmentID string) (claims.Evidence, error) {
	_ = ctx
	rec, err := s.get(consignmentID)
	if err != nil {
		return claims.Evidence{}, err
	}
	return rec.Evidence, nil
}

func (s *ConsignmentStore) get(id string) (ConsignmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return ConsignmentRecord{}, fmt.Errorf("consignment %s: %w", id, claims.ErrReferenceNotFound)
	}
	return rec, nil
}
