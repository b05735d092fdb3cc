package trace

import (
	"fmt"
	"math"
	"time"
)

// AnalyzerPolicy holds the thresholds used by Analyze.
type AnalyzerPolicy struct {
	MinSamples            int           `yaml:"min_samples"`
	MaxPlausibleSpeedKmh  float64       `yaml:"max_plausible_speed_kmh"`
	SpeedViolationKmh     float64       `yaml:"speed_violation_kmh"`
	ExcessiveSpeedKmh     float64       `yaml:"excessive_speed_kmh"`
	SignalLossGap         time.Duration `yaml:"signal_loss_gap"`
	BacktrackRadiusM      float64       `yaml:"backtrack_radius_m"`
	StopRadiusM           float64       `yaml:"stop_radius_m"`
	MinStopDuration       time.Duration `yaml:"min_stop_duration"`
	UnauthorizedStopAfter time.Duration `yaml:"unauthorized_stop_after"`
	HighSeverityStopAfter time.Duration `yaml:"high_severity_stop_after"`
	AuthorizedStopRadiusM float64       `yaml:"authorized_stop_radius_m"`

	SignalLossConfidence     float64 `yaml:"signal_loss_confidence"`
	ExcessiveSpeedConfidence float64 `yaml:"excessive_speed_confidence"`
	BacktrackingConfidence   float64 `yaml:"backtracking_confidence"`
}

// DefaultAnalyzerPolicy returns the production thresholds.
func DefaultAnalyzerPolicy() AnalyzerPolicy {
	return AnalyzerPolicy{
		MinSamples:               10,
		MaxPlausibleSpeedKmh:     200,
		SpeedViolationKmh:        90,
		ExcessiveSpeedKmh:        120,
		SignalLossGap:            15 * time.Minute,
		BacktrackRadiusM:         500,
		StopRadiusM:              100,
		MinStopDuration:          10 * time.Minute,
		UnauthorizedStopAfter:    30 * time.Minute,
		HighSeverityStopAfter:    2 * time.Hour,
		AuthorizedStopRadiusM:    300,
		SignalLossConfidence:     0.9,
		ExcessiveSpeedConfidence: 0.8,
		BacktrackingConfidence:   0.7,
	}
}

// Metrics are the distance and speed figures of a trace.
type Metrics struct {
	TotalKm         float64       `json:"total_km"`
	SegmentKm       []float64     `json:"segment_km"`
	AverageSpeedKmh float64       `json:"average_speed_kmh"`
	MaxSpeedKmh     float64       `json:"max_speed_kmh"`
	Elapsed         time.Duration `json:"elapsed"`
	SpeedViolations int           `json:"speed_violations"`
}

// Analysis is the outcome of analyzing one trace. When QualityPassed is
// false, Metrics is zeroed and Reasons lists every failed precondition.
type Analysis struct {
	QualityPassed bool        `json:"quality_passed"`
	Reasons       []Reason    `json:"reasons,omitempty"`
	Metrics       Metrics     `json:"metrics"`
	Anomalies     []Anomaly   `json:"anomalies,omitempty"`
	Stops         []Stop      `json:"stops,omitempty"`
	Deviations    []Deviation `json:"deviations,omitempty"`
}

// Analyze computes metrics, quality reasons, anomalies and stop deviations
// for an ordered sample sequence. It never fails; bad input is reported
// through Reasons.
func Analyze(samples []GeoSample, authorizedStops []GeoPoint, policy AnalyzerPolicy) Analysis {
	out := Analysis{}
	out.Reasons = checkQuality(samples, policy)
	out.QualityPassed = len(out.Reasons) == 0
	if out.QualityPassed {
		out.Metrics = computeMetrics(samples, policy)
	}

	out.Anomalies = append(out.Anomalies, detectSignalLoss(samples, policy)...)
	out.Anomalies = append(out.Anomalies, detectExcessiveSpeed(samples, policy)...)
	out.Anomalies = append(out.Anomalies, detectBacktracking(samples, policy)...)

	out.Stops = IdentifyStops(samples, policy)
	out.Deviations = unauthorizedStops(out.Stops, authorizedStops, policy)
	return out
}

func checkQuality(samples []GeoSample, policy AnalyzerPolicy) []Reason {
	var reasons []Reason
	if len(samples) < policy.MinSamples {
		reasons = append(reasons, Reason{
			Code:    ReasonInsufficientData,
			Message: fmt.Sprintf("trace has %d samples, need at least %d", len(samples), policy.MinSamples),
		})
	}

	outOfOrder := -1
	impossible := -1
	var worst float64
	for i := 1; i < len(samples); i++ {
		speed, ok := SegmentSpeedKmh(samples[i-1], samples[i])
		if !ok {
			if outOfOrder < 0 {
				outOfOrder = i
			}
			continue
		}
		if speed > policy.MaxPlausibleSpeedKmh && speed > worst {
			impossible = i
			worst = speed
		}
	}
	if outOfOrder >= 0 {
		reasons = append(reasons, Reason{
			Code:    ReasonOutOfOrderSamples,
			Message: fmt.Sprintf("sample %d is not later than sample %d", outOfOrder, outOfOrder-1),
		})
	}
	if impossible >= 0 {
		reasons = append(reasons, Reason{
			Code:    ReasonImpossibleSpeed,
			Message: fmt.Sprintf("segment ending at sample %d implies %.0f km/h", impossible, worst),
		})
	}
	return reasons
}

func computeMetrics(samples []GeoSample, policy AnalyzerPolicy) Metrics {
	m := Metrics{SegmentKm: make([]float64, 0, len(samples)-1)}
	var speedSum float64
	var speedCount int
	for i := 1; i < len(samples); i++ {
		km := Distance(samples[i-1].GeoPoint, samples[i].GeoPoint) / 1000
		m.SegmentKm = append(m.SegmentKm, km)
		m.TotalKm += km

		speed, ok := SegmentSpeedKmh(samples[i-1], samples[i])
		if !ok {
			continue
		}
		speedSum += speed
		speedCount++
		m.MaxSpeedKmh = math.Max(m.MaxSpeedKmh, speed)
		if speed > policy.SpeedViolationKmh {
			m.SpeedViolations++
		}
	}
	if speedCount > 0 {
		m.AverageSpeedKmh = speedSum / float64(speedCount)
	}
	m.Elapsed = samples[len(samples)-1].Timestamp.Sub(samples[0].Timestamp)
	return m
}

func detectSignalLoss(samples []GeoSample, policy AnalyzerPolicy) []Anomaly {
	var out []Anomaly
	for i := 1; i < len(samples); i++ {
		gap := samples[i].Timestamp.Sub(samples[i-1].Timestamp)
		if gap <= policy.SignalLossGap {
			continue
		}
		out = append(out, Anomaly{
			Type:        AnomalySignalLoss,
			Confidence:  policy.SignalLossConfidence,
			Start:       samples[i-1].Timestamp,
			End:         samples[i].Timestamp,
			Location:    samples[i-1].GeoPoint,
			Description: fmt.Sprintf("GPS signal lost for %d minutes", int(math.Round(gap.Minutes()))),
		})
	}
	return out
}

func detectExcessiveSpeed(samples []GeoSample, policy AnalyzerPolicy) []Anomaly {
	var out []Anomaly
	for i := 1; i < len(samples); i++ {
		speed, ok := SegmentSpeedKmh(samples[i-1], samples[i])
		if !ok || speed <= policy.ExcessiveSpeedKmh {
			continue
		}
		out = append(out, Anomaly{
			Type:        AnomalyExcessiveSpeed,
			Confidence:  policy.ExcessiveSpeedConfidence,
			Start:       samples[i-1].Timestamp,
			End:         samples[i].Timestamp,
			Location:    samples[i].GeoPoint,
			Description: fmt.Sprintf("excessive speed: %.0f km/h", speed),
		})
	}
	return out
}

// detectBacktracking flags each sample that comes back within the radius of
// any sample at least two positions earlier.
func detectBacktracking(samples []GeoSample, policy AnalyzerPolicy) []Anomaly {
	var out []Anomaly
	for i := 2; i < len(samples); i++ {
		for j := 0; j < i-1; j++ {
			if Distance(samples[i].GeoPoint, samples[j].GeoPoint) >= policy.BacktrackRadiusM {
				continue
			}
			out = append(out, Anomaly{
				Type:        AnomalyBacktracking,
				Confidence:  policy.BacktrackingConfidence,
				Start:       samples[j].Timestamp,
				End:         samples[i].Timestamp,
				Location:    samples[i].GeoPoint,
				Description: "vehicle returned to a previously visited location",
			})
			break
		}
	}
	return out
}

// IdentifyStops groups consecutive samples closer than the stop radius and
// keeps groups that lasted longer than the minimum stop duration. A group
// still open at the end of the trace is kept as well.
func IdentifyStops(samples []GeoSample, policy AnalyzerPolicy) []Stop {
	var stops []Stop
	var current *Stop
	flush := func() {
		if current == nil {
			return
		}
		current.Duration = current.End.Sub(current.Start)
		if current.Duration > policy.MinStopDuration {
			stops = append(stops, *current)
		}
		current = nil
	}

	for i := 1; i < len(samples); i++ {
		if Distance(samples[i-1].GeoPoint, samples[i].GeoPoint) < policy.StopRadiusM {
			if current == nil {
				current = &Stop{
					Location: samples[i-1].GeoPoint,
					Start:    samples[i-1].Timestamp,
				}
			}
			current.End = samples[i].Timestamp
			continue
		}
		flush()
	}
	flush()
	return stops
}

func unauthorizedStops(stops []Stop, authorized []GeoPoint, policy AnalyzerPolicy) []Deviation {
	var out []Deviation
	for _, stop := range stops {
		if stop.Duration <= policy.UnauthorizedStopAfter {
			continue
		}
		if isAuthorized(stop.Location, authorized, policy.AuthorizedStopRadiusM) {
			continue
		}
		severity := SeverityMedium
		if stop.Duration > policy.HighSeverityStopAfter {
			severity = SeverityHigh
		}
		out = append(out, Deviation{
			Type:        DeviationUnauthorizedStop,
			Severity:    severity,
			Location:    stop.Location,
			Start:       stop.Start,
			End:         stop.End,
			Duration:    stop.Duration,
			Description: fmt.Sprintf("unauthorized stop for %d minutes", int(math.Round(stop.Duration.Minutes()))),
		})
	}
	return out
}

func isAuthorized(location GeoPoint, authorized []GeoPoint, radius float64) bool {
	for _, point := range authorized {
		if Distance(location, point) <= radius {
			return true
		}
	}
	return false
}
