package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	claims "uppf-claims/internal/claims/domain"
	"uppf-claims/internal/config"
	reconciliation "uppf-claims/internal/reconciliation/domain"
	route "uppf-claims/internal/route/domain"
	trace "uppf-claims/internal/trace/domain"
)

// ReferenceData serves equalisation points and authorized stops from
// memory, and tariffs and tolerance factors from the live policy.
type ReferenceData struct {
	mu     sync.RWMutex
	points map[string][]route.EqualisationPoint
	stops  map[string][]trace.GeoPoint
	policy func() config.Policy
}

// NewReferenceData constructs reference data over a policy source. A nil
// policy uses the defaults.
func NewReferenceData(policy func() config.Policy) *ReferenceData {
	if policy == nil {
		policy = config.DefaultPolicy
	}
	return &ReferenceData{
		points: make(map[string][]route.EqualisationPoint),
		stops:  make(map[string][]trace.GeoPoint),
		policy: policy,
	}
}

// PutPoint adds an equalisation point version for its route.
func (r *ReferenceData) PutPoint(p route.EqualisationPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.points[p.RouteID] = append(r.points[p.RouteID], p)
}

// PutStops replaces the authorized stops of a route.
func (r *ReferenceData) PutStops(routeID string, stops []trace.GeoPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops[routeID] = append([]trace.GeoPoint(nil), stops...)
}

// EqualisationPoint returns the point version valid at at. When several
// are valid the latest effective one wins.
func (r *ReferenceData) EqualisationPoint(ctx context.Context, routeID string, at time.Time) (route.EqualisationPoint, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		found route.EqualisationPoint
		ok    bool
	)
	for _, p := range r.points[routeID] {
		if !p.ValidAt(at) {
			continue
		}
		if !ok || p.EffectiveFrom.After(found.EffectiveFrom) {
			found, ok = p, true
		}
	}
	if !ok {
		return route.EqualisationPoint{}, fmt.Errorf("equalisation point for route %s: %w", routeID, claims.ErrReferenceNotFound)
	}
	return found, nil
}

// AuthorizedStops returns the authorized stops of a route.
func (r *ReferenceData) AuthorizedStops(ctx context.Context, routeID string) ([]trace.GeoPoint, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	stops, ok := r.stops[routeID]
	if !ok {
		return nil, fmt.Errorf("authorized stops for route %s: %w", routeID, claims.ErrReferenceNotFound)
	}
	return append([]trace.GeoPoint(nil), stops...), nil
}

// Tariffs returns the configured tariffs.
func (r *ReferenceData) Tariffs(ctx context.Context) (claims.Tariffs, error) {
	_ = ctx
	return r.policy().Tariffs, nil
}

// ToleranceFactors returns the configured factors for a route and product.
func (r *ReferenceData) ToleranceFactors(ctx context.Context, routeID string, product claims.ProductType) (reconciliation.ToleranceFactors, error) {
	_ = ctx
	return r.policy().ToleranceFactors(routeID, product), nil
}
