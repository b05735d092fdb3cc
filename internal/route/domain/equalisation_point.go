package route

import "time"

// RoadCategory selects the tariff multiplier for a route.
type RoadCategory string

const (
	RoadHighway     RoadCategory = "HIGHWAY"
	RoadUrban       RoadCategory = "URBAN"
	RoadRural       RoadCategory = "RURAL"
	RoadMountainous RoadCategory = "MOUNTAINOUS"
	RoadCoastal     RoadCategory = "COASTAL"
)

// EqualisationPoint is the reference threshold for one depot-to-station route.
type EqualisationPoint struct {
	RouteID          string       `json:"route_id" yaml:"route_id"`
	DepotID          string       `json:"depot_id" yaml:"depot_id"`
	StationID        string       `json:"station_id" yaml:"station_id"`
	ThresholdKm      float64      `json:"threshold_km" yaml:"threshold_km"`
	RoadCategory     RoadCategory `json:"road_category" yaml:"road_category"`
	TrafficFactor    float64      `json:"traffic_factor" yaml:"traffic_factor"`
	ComplexityFactor float64      `json:"complexity_factor" yaml:"complexity_factor"`
	EffectiveFrom    time.Time    `json:"effective_from" yaml:"effective_from"`
	EffectiveTo      *time.Time   `json:"effective_to,omitempty" yaml:"effective_to,omitempty"`
	Active           bool         `json:"active" yaml:"active"`
}

// AdjustedThreshold returns the threshold scaled by traffic and complexity.
// Unset factors count as 1.
func (p EqualisationPoint) AdjustedThreshold() float64 {
	return p.ThresholdKm * factorOrOne(p.TrafficFactor) * factorOrOne(p.ComplexityFactor)
}

// ValidAt reports whether the point is active and in force at t.
func (p EqualisationPoint) ValidAt(t time.Time) bool {
	if !p.Active {
		return false
	}
	if !p.EffectiveFrom.IsZero() && t.Before(p.EffectiveFrom) {
		return false
	}
	if p.EffectiveTo != nil && !t.Before(*p.EffectiveTo) {
		return false
	}
	return true
}

// KmBeyond returns max(0, kmActual - adjusted threshold).
func (p EqualisationPoint) KmBeyond(kmActual float64) float64 {
	beyond := kmActual - p.AdjustedThreshold()
	if beyond < 0 {
		return 0
	}
	return beyond
}

func factorOrOne(f float64) float64 {
	if f <= 0 {
		return 1
	}
	return f
}
