package trace

import (
	"fmt"
	"time"
)

// LivePolicy holds the thresholds checked on every sample of a trace in
// transit.
type LivePolicy struct {
	SpeedLimitKmh float64 `yaml:"speed_limit_kmh"`
	StopWindow    int     `yaml:"stop_window"`
	StopRadiusM   float64 `yaml:"stop_radius_m"`
}

// DefaultLivePolicy returns the production live-check thresholds.
func DefaultLivePolicy() LivePolicy {
	return LivePolicy{SpeedLimitKmh: 80, StopWindow: 10, StopRadiusM: 100}
}

// LiveViolationKind names a live finding.
type LiveViolationKind string

const (
	LiveSpeeding     LiveViolationKind = "speeding"
	LiveExtendedStop LiveViolationKind = "extended_stop"
)

// LiveViolation is a finding raised while the vehicle is still moving.
type LiveViolation struct {
	Kind        LiveViolationKind `json:"kind"`
	Location    GeoPoint          `json:"location"`
	At          time.Time         `json:"at"`
	Value       float64           `json:"value"`
	Description string            `json:"description"`
}

// CheckLive inspects the newest sample of samples against the samples
// before it. The reported speed is used when present, otherwise the speed
// is inferred from the previous sample. An extended stop is raised once,
// when the last StopWindow samples first fall inside StopRadiusM.
func CheckLive(samples []GeoSample, p LivePolicy) []LiveViolation {
	n := len(samples)
	if n == 0 {
		return nil
	}
	latest := samples[n-1]
	var out []LiveViolation

	speed, known := 0.0, false
	if latest.Speed != nil {
		speed, known = *latest.Speed, true
	} else if n > 1 {
		speed, known = SegmentSpeedKmh(samples[n-2], latest)
	}
	if known && p.SpeedLimitKmh > 0 && speed > p.SpeedLimitKmh {
		out = append(out, LiveViolation{
			Kind:        LiveSpeeding,
			Location:    latest.GeoPoint,
			At:          latest.Timestamp,
			Value:       speed,
			Description: fmt.Sprintf("speed %.0f km/h above limit %.0f km/h", speed, p.SpeedLimitKmh),
		})
	}

	if p.StopWindow > 1 && stationary(samples, n, p) && !stationary(samples, n-1, p) {
		first := samples[n-p.StopWindow]
		elapsed := latest.Timestamp.Sub(first.Timestamp)
		out = append(out, LiveViolation{
			Kind:        LiveExtendedStop,
			Location:    latest.GeoPoint,
			At:          latest.Timestamp,
			Value:       elapsed.Minutes(),
			Description: fmt.Sprintf("vehicle stationary for %d samples (%.0f min)", p.StopWindow, elapsed.Minutes()),
		})
	}
	return out
}

// stationary reports whether the StopWindow samples ending at end all lie
// within StopRadiusM of the first of them.
func stationary(samples []GeoSample, end int, p LivePolicy) bool {
	if end < p.StopWindow {
		return false
	}
	window := samples[end-p.StopWindow : end]
	anchor := window[0].GeoPoint
	for _, s := range window[1:] {
		if Distance(anchor, s.GeoPoint) > p.StopRadiusM {
			return false
		}
	}
	return true
}
