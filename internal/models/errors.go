package models

import "errors"

// Errors surfaced by the analysis stages. Stages wrap these with context, so
// callers should test with errors.Is.
var (
	// ErrInsufficientSamples is returned when there are fewer than three
	// samples, or fewer samples than the requested fold count.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrMissingTargetField is returned when the target variable is absent
	// or non-numeric on a point used by a stage.
	ErrMissingTargetField = errors.New("missing target field")

	// ErrInvalidConfig is returned for structurally invalid settings such as
	// a non-positive resolution or class count.
	ErrInvalidConfig = errors.New("invalid config")
)

// MinSamples is the smallest number of points any analysis accepts.
const MinSamples = 3
