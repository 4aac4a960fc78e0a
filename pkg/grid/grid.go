// Package grid derives the regular lattice of query points on which every
// surface of an analysis is evaluated.
package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"spatialrpe/internal/models"
)

// PaddingCells is how many resolution steps the lattice extends beyond the
// sample bounding box on each side.
const PaddingCells = 2

// snap absorbs floating point noise when counting steps along an axis.
const snap = 1e-9

// Lattice is a padded rectangular grid stored row-major: rows run south to
// north (ascending lat), columns west to east (ascending lng).
type Lattice struct {
	// MinLat and MinLng locate the south-west cell centre
	MinLat float64
	MinLng float64

	// Resolution is the step between adjacent cells on both axes
	Resolution float64

	Rows int
	Cols int
}

// Build computes the lattice covering the bounding box of points expanded by
// PaddingCells*resolution on every side. A degenerate bounding box (all
// samples sharing a lat or a lng) still yields a valid lattice made only of
// padding along that axis.
func Build(points []models.SamplePoint, resolution float64) (*Lattice, error) {
	if math.IsNaN(resolution) || math.IsInf(resolution, 0) || resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution must be finite and positive, got %v", models.ErrInvalidConfig, resolution)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: cannot build a grid without points", models.ErrInsufficientSamples)
	}

	lats := make([]float64, len(points))
	lngs := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Lat
		lngs[i] = p.Lng
	}

	pad := PaddingCells * resolution
	minLat, maxLat := floats.Min(lats)-pad, floats.Max(lats)+pad
	minLng, maxLng := floats.Min(lngs)-pad, floats.Max(lngs)+pad

	return &Lattice{
		MinLat:     minLat,
		MinLng:     minLng,
		Resolution: resolution,
		Rows:       steps(maxLat-minLat, resolution),
		Cols:       steps(maxLng-minLng, resolution),
	}, nil
}

// steps returns the number of lattice positions needed to cover span.
// Positions are computed from integer offsets rather than accumulated so
// the lattice is reproducible bit for bit.
func steps(span, resolution float64) int {
	return int(math.Floor(span/resolution+snap)) + 1
}

// Len returns the number of cells in the lattice.
func (l *Lattice) Len() int {
	return l.Rows * l.Cols
}

// At returns the coordinates of the i-th cell in row-major order.
func (l *Lattice) At(i int) (lat, lng float64) {
	row, col := i/l.Cols, i%l.Cols
	return l.MinLat + float64(row)*l.Resolution, l.MinLng + float64(col)*l.Resolution
}

// Index returns the row-major index of the cell at row, col.
func (l *Lattice) Index(row, col int) int {
	return row*l.Cols + col
}

// Cells materialises the lattice as unannotated grid cells.
func (l *Lattice) Cells() []models.GridCell {
	cells := make([]models.GridCell, l.Len())
	for i := range cells {
		cells[i].Lat, cells[i].Lng = l.At(i)
	}
	return cells
}
