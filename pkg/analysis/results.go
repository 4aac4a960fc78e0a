package analysis

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"spatialrpe/internal/models"
	"spatialrpe/pkg/grid"
	"spatialrpe/pkg/metrics"
	"spatialrpe/pkg/validation"
)

// Results is everything an analysis run produces. Renderers and exporters
// only need read access to it.
type Results struct {
	Type           models.AnalysisType `json:"analysisType"`
	TargetVariable string              `json:"targetVariable"`
	Predictors     []string            `json:"predictors"`
	Algorithm      string              `json:"algorithm"`

	// Lattice describes the shape of Cells
	Lattice grid.Lattice `json:"lattice"`

	// Cells is the annotated lattice, row-major
	Cells []models.GridCell `json:"cells"`

	// MinValue and MaxValue bound the continuous surface
	MinValue float64 `json:"minValue"`
	MaxValue float64 `json:"maxValue"`

	// Breaks are the class breakpoints, NumClasses+1 of them
	Breaks     []float64 `json:"breaks"`
	NumClasses int       `json:"numClasses"`

	// Residuals are the held-out cross-validation errors, one per sample
	Residuals []validation.Residual `json:"residuals"`

	// RPEMethod names the reliability method applied
	RPEMethod string `json:"rpeMethod"`

	// RPEPolygon is the buffered convex hull of the samples
	RPEPolygon orb.Ring `json:"rpePolygon"`

	// ReliableCells counts cells inside the reliable prediction extent
	ReliableCells int `json:"reliableCells"`

	// DegenerateHull is set when the samples enclose no area
	DegenerateHull bool `json:"degenerateHull"`

	Metrics           metrics.Summary            `json:"metrics"`
	FeatureImportance []models.FeatureImportance `json:"featureImportance,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Surface names accepted by Results.Surface.
const (
	SurfaceValue       = "value"
	SurfaceClass       = "class"
	SurfaceAccuracy    = "accuracy"
	SurfaceResidual    = "residual"
	SurfaceUncertainty = "uncertainty"
	SurfaceReliable    = "reliable"
)

// Surface extracts one layer of the annotated lattice as a row-major slice.
// The second return is false for cells that lack the annotation; the
// returned value is then zero.
func (r *Results) Surface(name string) ([]float64, []bool, error) {
	values := make([]float64, len(r.Cells))
	present := make([]bool, len(r.Cells))

	for i, c := range r.Cells {
		switch name {
		case SurfaceValue:
			values[i], present[i] = c.Value, true
		case SurfaceClass:
			if c.Class != nil {
				values[i], present[i] = float64(*c.Class), true
			}
		case SurfaceAccuracy:
			if c.Accuracy != nil {
				values[i], present[i] = *c.Accuracy, true
			}
		case SurfaceResidual:
			if c.Residual != nil {
				values[i], present[i] = *c.Residual, true
			}
		case SurfaceUncertainty:
			if c.Uncertainty != nil {
				values[i], present[i] = *c.Uncertainty, true
			}
		case SurfaceReliable:
			if c.Reliable != nil {
				present[i] = true
				if *c.Reliable {
					values[i] = 1
				}
			}
		default:
			return nil, nil, fmt.Errorf("unknown surface %q", name)
		}
	}
	return values, present, nil
}
