// Package uncertainty scores how far each lattice cell is from supporting
// samples.
package uncertainty

import (
	"fmt"
	"math"

	"spatialrpe/internal/models"
	"spatialrpe/pkg/geometry"
	"spatialrpe/pkg/grid"
)

const (
	// DensityRadius is the neighbourhood, in coordinate units, used to count
	// nearby samples.
	DensityRadius = 0.05

	// SaturationCount is the neighbour count at which density stops
	// lowering uncertainty.
	SaturationCount = 5

	distanceShare = 0.6
	densityShare  = 0.4
)

// Estimate scores every lattice cell in [0, 1]:
//
//	0.6 * d/dmax + 0.4 * (1 - min(n/5, 1))
//
// where d is the distance to the nearest sample, dmax the largest such
// distance over the lattice and n the number of samples within
// DensityRadius. When dmax is zero the distance term is zero.
func Estimate(points []models.SamplePoint, l *grid.Lattice) ([]float64, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: uncertainty needs at least one sample", models.ErrInsufficientSamples)
	}
	return EstimateWithIndex(geometry.NewIndex(points), l), nil
}

// EstimateWithIndex is Estimate over a prebuilt, non-empty index.
func EstimateWithIndex(ix *geometry.Index, l *grid.Lattice) []float64 {
	n := l.Len()
	dist := make([]float64, n)
	maxDist := 0.0
	for i := 0; i < n; i++ {
		lat, lng := l.At(i)
		_, d := ix.Nearest(lat, lng)
		dist[i] = d
		if d > maxDist {
			maxDist = d
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lat, lng := l.At(i)

		var distanceFactor float64
		if maxDist > 0 {
			distanceFactor = dist[i] / maxDist
		}

		count := ix.CountWithin(lat, lng, DensityRadius)
		densityFactor := 1 - math.Min(float64(count)/SaturationCount, 1)

		out[i] = distanceShare*distanceFactor + densityShare*densityFactor
	}
	return out
}
