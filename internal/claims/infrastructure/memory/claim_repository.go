package memory

import (
	"context"
	"sort"
	"sync"

	claims "uppf-claims/internal/claims/domain"
)

// ClaimRepository keeps claims in memory.
type ClaimRepository struct {
	mu            sync.RWMutex
	byID          map[string]*claims.Claim
	byConsignment map[string]string
}

// NewClaimRepository constructs an empty repository.
func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{
		byID:          make(map[string]*claims.Claim),
		byConsignment: make(map[string]string),
	}
}

// Create stores a new claim. A consignment holds at most one claim.
func (r *ClaimRepository) Create(ctx context.Context, c *claims.Claim) error {
	_ = ctx
	if c == nil || c.ConsignmentID == "" {
		return claims.ErrEmptyConsignmentID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConsignment[c.ConsignmentID]; ok {
		return claims.ErrClaimExists
	}
	if _, ok := r.byID[c.ID]; ok {
		return claims.ErrClaimExists
	}
	r.byID[c.ID] = c.Clone()
	r.byConsignment[c.ConsignmentID] = c.ID
	return nil
}

// Get loads a claim by id.
func (r *ClaimRepository) Get(ctx context.Context, id string) (*claims.Claim, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, claims.ErrClaimNotFound
	}
	return c.Clone(), nil
}

// FindByConsignment loads the claim of a consignment.
func (r *ClaimRepository) FindByConsignment(ctx context.Context, consignmentID string) (*claims.Claim, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byConsignment[consignmentID]
	if !ok {
		return nil, claims.ErrClaimNotFound
	}
	return r.byID[id].Clone(), nil
}

// Update replaces a claim still in status from.
func (r *ClaimRepository) Update(ctx context.Context, c *claims.Claim, from claims.Status) error {
	_ = ctx
	if c == nil {
		return claims.ErrClaimNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[c.ID]
	if !ok {
		return claims.ErrClaimNotFound
	}
	if stored.Status != from {
		return claims.ErrStaleClaim
	}
	r.byID[c.ID] = c.Clone()
	return nil
}

// ListByStatus lists claims in a status ordered by claim number. An empty
// windowID matches every window.
func (r *ClaimRepository) ListByStatus(ctx context.Context, status claims.Status, windowID string) ([]*claims.Claim, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*claims.Claim
	for _, c := range r.byID {
		if c.Status != status {
			continue
		}
		if windowID != "" && c.WindowID != windowID {
			continue
		}
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimNumber < out[j].ClaimNumber })
	return out, nil
}
