package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	claims "uppf-claims/internal/claims/domain"
	"uppf-claims/internal/config"
	reconciliation "uppf-claims/internal/reconciliation/domain"
	route "uppf-claims/internal/route/domain"
	trace "uppf-claims/internal/trace/domain"
)

const (
	defaultPointsTable = "uppf_equalisation_points"
	defaultStopsTable  = "uppf_authorized_stops"
)

// ReferenceData reads equalisation points and authorized stops from
// Postgres. Tariffs and tolerance factors come from the live policy.
type ReferenceData struct {
	db          DBTX
	pointsTable string
	stopsTable  string
	policy      func() config.Policy
}

// ReferenceOption configures ReferenceData.
type ReferenceOption func(*ReferenceData)

// WithPointsTable overrides the equalisation point table name.
func WithPointsTable(table string) ReferenceOption {
	return func(r *ReferenceData) {
		if table != "" {
			r.pointsTable = table
		}
	}
}

// WithStopsTable overrides the authorized stop table name.
func WithStopsTable(table string) ReferenceOption {
	return func(r *ReferenceData) {
		if table != "" {
			r.stopsTable = table
		}
	}
}

// NewReferenceData constructs reference data. A nil policy uses the
// defaults.
func NewReferenceData(db DBTX, policy func() config.Policy, opts ...ReferenceOption) *ReferenceData {
	if policy == nil {
		policy = config.DefaultPolicy
	}
	r := &ReferenceData{db: db, pointsTable: defaultPointsTable, stopsTable: defaultStopsTable, policy: policy}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EqualisationPoint returns the latest active point version of a route
// effective at at.
func (r *ReferenceData) EqualisationPoint(ctx context.Context, routeID string, at time.Time) (route.EqualisationPoint, error) {
	if r == nil || r.db == nil {
		return route.EqualisationPoint{}, errors.New("reference data: nil db")
	}
	query := fmt.Sprintf(`
SELECT route_id, depot_id, station_id, threshold_km, road_category,
	traffic_factor, complexity_factor, effective_from, effective_to, active
FROM %s
WHERE route_id = $1 AND active AND effective_from <= $2
	AND (effective_to IS NULL OR effective_to > $2)
ORDER BY effective_from DESC
LIMIT 1`, r.pointsTable)

	var (
		p  route.EqualisationPoint
		to sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, routeID, at.UTC()).Scan(
		&p.RouteID,
		&p.DepotID,
		&p.StationID,
		&p.ThresholdKm,
		&p.RoadCategory,
		&p.TrafficFactor,
		&p.ComplexityFactor,
		&p.EffectiveFrom,
		&to,
		&p.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return route.EqualisationPoint{}, fmt.Errorf("equalisation point for route %s: %w", routeID, claims.ErrReferenceNotFound)
	}
	if err != nil {
		return route.EqualisationPoint{}, err
	}
	p.EffectiveFrom = p.EffectiveFrom.UTC()
	if to.Valid {
		end := to.Time.UTC()
		p.EffectiveTo = &end
	}
	return p, nil
}

// SavePoint upserts a point version keyed by route and effective date.
func (r *ReferenceData) SavePoint(ctx context.Context, p route.EqualisationPoint) error {
	if r == nil || r.db == nil {
		return errors.New("reference data: nil db")
	}
	if p.RouteID == "" {
		return errors.New("reference data: empty route id")
	}
	var to sql.NullTime
	if p.EffectiveTo != nil {
		to = sql.NullTime{Time: p.EffectiveTo.UTC(), Valid: true}
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	route_id,
	depot_id,
	station_id,
	threshold_km,
	road_category,
	traffic_factor,
	complexity_factor,
	effective_from,
	effective_to,
	active
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
ON CONFLICT (route_id, effective_from)
DO UPDATE SET
	depot_id = EXCLUDED.depot_id,
	station_id = EXCLUDED.station_id,
	threshold_km = EXCLUDED.threshold_km,
	road_category = EXCLUDED.road_category,
	traffic_factor = EXCLUDED.traffic_factor,
	complexity_factor = EXCLUDED.complexity_factor,
	effective_to = EXCLUDED.effective_to,
	active = EXCLUDED.active,
	updated_at = NOW()`, r.pointsTable)
	_, err := r.db.ExecContext(ctx, query,
		p.RouteID,
		p.DepotID,
		p.StationID,
		p.ThresholdKm,
		p.RoadCategory,
		p.TrafficFactor,
		p.ComplexityFactor,
		p.EffectiveFrom.UTC(),
		to,
		p.Active,
	)
	return err
}

// AuthorizedStops returns the authorized stops of a route.
func (r *ReferenceData) AuthorizedStops(ctx context.Context, routeID string) ([]trace.GeoPoint, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reference data: nil db")
	}
	query := fmt.Sprintf(`
SELECT latitude, longitude
FROM %s
WHERE route_id = $1
ORDER BY id ASC`, r.stopsTable)
	rows, err := r.db.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trace.GeoPoint
	for rows.Next() {
		var p trace.GeoPoint
		if err := rows.Scan(&p.Latitude, &p.Longitude); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("authorized stops for route %s: %w", routeID, claims.ErrReferenceNotFound)
	}
	return out, nil
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
