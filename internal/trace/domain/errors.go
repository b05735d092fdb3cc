package trace

import "errors"

var (
	// ErrEmptyConsignmentID is returned when a trace has no consignment id.
	ErrEmptyConsignmentID = errors.New("trace: empty consignment id")
	// ErrEmptyVehicleID is returned when a trace has no vehicle id.
	ErrEmptyVehicleID = errors.New("trace: empty vehicle id")
	// ErrTraceCompleted is returned when appending to a completed leg.
	ErrTraceCompleted = errors.New("trace: leg already completed")
	// ErrStaleSample is returned when a sample is not newer than the last one.
	ErrStaleSample = errors.New("trace: sample not newer than last sample")
	// ErrTraceNotFound is returned when no trace exists for a consignment.
	ErrTraceNotFound = errors.New("trace: not found")
)
