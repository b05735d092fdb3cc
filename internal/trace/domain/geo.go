package trace

import (
	"math"
	"time"
)

const earthRadiusMeters = 6371008.8

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// GeoSample is a timestamped position report from a vehicle.
type GeoSample struct {
	GeoPoint
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Speed     *float64  `json:"speed,omitempty" yaml:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty" yaml:"heading,omitempty"`
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b GeoPoint) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// SegmentSpeedKmh infers speed between two samples: (meters / seconds) * 3.6.
// ok is false when the samples are not strictly increasing in time.
func SegmentSpeedKmh(from, to GeoSample) (speed float64, ok bool) {
	seconds := to.Timestamp.Sub(from.Timestamp).Seconds()
	if seconds <= 0 {
		return 0, false
	}
	return Distance(from.GeoPoint, to.GeoPoint) / seconds * 3.6, true
}

// PolylineKm returns the summed great-circle length of a polyline in km.
func PolylineKm(points []GeoPoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total / 1000
}

// Points strips timestamps from samples.
func Points(samples []GeoSample) []GeoPoint {
	out := make([]GeoPoint, len(samples))
	for i, s := range samples {
		out[i] = s.GeoPoint
	}
	return out
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
