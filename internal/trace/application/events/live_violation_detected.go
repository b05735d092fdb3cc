package events

import "time"

// LiveViolationDetected is raised when a sample of an in-transit trace
// breaks a live check.
type LiveViolationDetected struct {
	EventID       string    `json:"event_id"`
	ConsignmentID string    `json:"consignment_id"`
	VehicleID     string    `json:"vehicle_id"`
	Kind          string    `json:"kind"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Value         float64   `json:"value"`
	Description   string    `json:"description"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// TraceCompleted is raised when a delivery leg's trace is frozen.
type TraceCompleted struct {
	EventID       string    `json:"event_id"`
	ConsignmentID string    `json:"consignment_id"`
	VehicleID     string    `json:"vehicle_id"`
	Samples       int       `json:"samples"`
	OccurredAt    time.Time `json:"occurred_at"`
}
