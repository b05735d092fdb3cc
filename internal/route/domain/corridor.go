package route

import (
	"math"

	trace "uppf-claims/internal/trace/domain"
)

const metersPerDegree = 6371008.8 * math.Pi / 180

// DistanceToPolyline returns the distance in meters from p to the nearest
// point of the polyline. Each segment is measured on an equirectangular
// projection centred on p, which is accurate well beyond corridor widths.
func DistanceToPolyline(p trace.GeoPoint, line []trace.GeoPoint) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return trace.Distance(p, line[0])
	}

	cosLat := math.Cos(p.Latitude * math.Pi / 180)
	project := func(q trace.GeoPoint) (x, y float64) {
		return (q.Longitude - p.Longitude) * cosLat * metersPerDegree,
			(q.Latitude - p.Latitude) * metersPerDegree
	}

	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		ax, ay := project(line[i-1])
		bx, by := project(line[i])
		best = math.Min(best, originToSegment(ax, ay, bx, by))
	}
	return best
}

func originToSegment(ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(ax, ay)
	}
	t := -(ax*dx + ay*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(ax+t*dx, ay+t*dy)
}
