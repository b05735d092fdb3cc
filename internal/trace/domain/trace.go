package trace

import "time"

// Trace is the ordered sample sequence of one delivery leg. It only grows
// while the leg is in transit and is frozen once completed.
type Trace struct {
	ConsignmentID string      `json:"consignment_id"`
	VehicleID     string      `json:"vehicle_id"`
	Samples       []GeoSample `json:"samples"`
	Completed     bool        `json:"completed"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
}

// NewTrace constructs an empty in-transit trace.
func NewTrace(consignmentID, vehicleID string) (*Trace, error) {
	if consignmentID == "" {
		return nil, ErrEmptyConsignmentID
	}
	if vehicleID == "" {
		return nil, ErrEmptyVehicleID
	}
	return &Trace{ConsignmentID: consignmentID, VehicleID: vehicleID}, nil
}

// Append adds a sample to an in-transit trace.
func (t *Trace) Append(sample GeoSample) error {
	if t.Completed {
		return ErrTraceCompleted
	}
	if n := len(t.Samples); n > 0 && !sample.Timestamp.After(t.Samples[n-1].Timestamp) {
		return ErrStaleSample
	}
	t.Samples = append(t.Samples, sample)
	return nil
}

// Complete freezes the trace. Completing twice is a no-op.
func (t *Trace) Complete(at time.Time) {
	if t.Completed {
		return
	}
	at = at.UTC()
	t.Completed = true
	t.CompletedAt = &at
}

// Last returns up to n most recent samples.
func (t *Trace) Last(n int) []GeoSample {
	if n <= 0 || len(t.Samples) == 0 {
		return nil
	}
	if n > len(t.Samples) {
		n = len(t.Samples)
	}
	return t.Samples[len(t.Samples)-n:]
}

// Clone returns a deep copy.
func (t *Trace) Clone() *Trace {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Samples = append([]GeoSample(nil), t.Samples...)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}
