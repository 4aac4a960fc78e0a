package models

import (
	"fmt"
	"math"
)

// SamplePoint is a single irregularly-spaced observation. Coordinates are
// treated as a planar lat/lng frame; no reprojection happens anywhere.
type SamplePoint struct {
	// Lat is the latitude (northing) of the sample
	Lat float64 `json:"lat"`

	// Lng is the longitude (easting) of the sample
	Lng float64 `json:"lng"`

	// Properties holds the measured attributes. Values are either numbers
	// (float64 or any Go integer type) or strings.
	Properties map[string]any `json:"properties"`
}

// Number returns the named property as a float64. Strings and missing keys
// report ok == false, as do NaN and infinite values.
func (p SamplePoint) Number(field string) (float64, bool) {
	raw, ok := p.Properties[field]
	if !ok {
		return 0, false
	}

	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint:
		v = float64(n)
	case uint32:
		v = float64(n)
	case uint64:
		v = float64(n)
	default:
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// TargetValues extracts the target field of every point in input order.
// It fails with ErrMissingTargetField on the first point that lacks a
// numeric value for field.
func TargetValues(points []SamplePoint, field string) ([]float64, error) {
	values := make([]float64, len(points))
	for i, p := range points {
		v, ok := p.Number(field)
		if !ok {
			return nil, fmt.Errorf("%w: %q on point %d", ErrMissingTargetField, field, i)
		}
		values[i] = v
	}
	return values, nil
}

// GridCell is one lattice position together with the annotations the
// analysis stages attach to it. Annotations are nil until the stage that
// produces them has run.
type GridCell struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Value float64 `json:"value"`

	// Class is the ordinal band in [0, numClasses-1]
	Class *int `json:"class,omitempty"`

	// Accuracy is the absolute cross-validation residual of the nearest sample
	Accuracy *float64 `json:"accuracy,omitempty"`

	// Residual is the signed cross-validation residual (observed - predicted)
	// of the nearest sample
	Residual *float64 `json:"residual,omitempty"`

	// Uncertainty is a 0..1 score combining distance and sample density
	Uncertainty *float64 `json:"uncertainty,omitempty"`

	// Reliable reports whether the cell lies inside the reliable prediction extent
	Reliable *bool `json:"reliable,omitempty"`
}

// FeatureImportance is the relative contribution of one predictor variable.
// Importances of a run sum to 1.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// AnalysisType distinguishes plain interpolation from predictor-driven runs.
type AnalysisType string

const (
	SingleVariable AnalysisType = "single-variable"
	PredictorBased AnalysisType = "predictor-based"
)
