// Package reliability computes the reliable prediction extent: the part of
// the lattice where estimates are supported well enough by samples to be
// trusted.
package reliability

import (
	"fmt"

	"github.com/paulmach/orb"

	"spatialrpe/internal/models"
	"spatialrpe/pkg/geometry"
	"spatialrpe/pkg/grid"
	"spatialrpe/pkg/uncertainty"
)

// Extent is the outcome of a reliability run.
type Extent struct {
	// Method is the name of the method applied
	Method string

	// Reliable has one flag per lattice cell, row-major
	Reliable []bool

	// Hull is the convex hull of the samples
	Hull []orb.Point

	// Polygon is the buffered hull, closed when it has area
	Polygon orb.Ring

	// Degenerate is set when the samples span no area, in which case no
	// cell is inside the polygon
	Degenerate bool

	// Uncertainty is the surface the method consulted, if any
	Uncertainty []float64
}

// Count returns the number of reliable cells.
func (e *Extent) Count() int {
	n := 0
	for _, r := range e.Reliable {
		if r {
			n++
		}
	}
	return n
}

// Compute flags every lattice cell with m. The buffered hull polygon is
// always produced with the given buffer, for display, whichever method is
// used. unc may be nil; methods that need uncertainty then compute it from
// the samples.
func Compute(points []models.SamplePoint, l *grid.Lattice, m Method, buffer float64, unc []float64) (*Extent, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: reliability needs at least one sample", models.ErrInsufficientSamples)
	}
	if m == nil {
		m = ConvexHull{}
	}
	if unc != nil && len(unc) != l.Len() {
		return nil, fmt.Errorf("uncertainty surface has %d cells, lattice has %d", len(unc), l.Len())
	}

	hull := geometry.ConvexHull(geometry.Points(points))
	ring := geometry.Buffer(hull, buffer)

	s := &scene{
		ring:        ring,
		index:       geometry.NewIndex(points),
		uncertainty: unc,
	}
	if m.usesUncertainty() && s.uncertainty == nil {
		s.uncertainty = uncertainty.EstimateWithIndex(s.index, l)
	}

	reliable := make([]bool, l.Len())
	for i := range reliable {
		lat, lng := l.At(i)
		reliable[i] = m.reliable(s, i, orb.Point{lng, lat})
	}

	return &Extent{
		Method:      m.Name(),
		Reliable:    reliable,
		Hull:        hull,
		Polygon:     ring,
		Degenerate:  geometry.Degenerate(ring),
		Uncertainty: s.uncertainty,
	}, nil
}
