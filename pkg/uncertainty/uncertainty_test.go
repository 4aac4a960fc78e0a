package uncertainty

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spatialrpe/internal/models"
	"spatialrpe/pkg/grid"
)

func squareWithCenter() []models.SamplePoint {
	return []models.SamplePoint{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 1, Lng: 0},
		{Lat: 1, Lng: 1},
		{Lat: 0.5, Lng: 0.5},
	}
}

func TestEstimateRange(t *testing.T) {
	points := squareWithCenter()
	l, err := grid.Build(points, 0.25)
	require.NoError(t, err)

	unc, err := Estimate(points, l)
	require.NoError(t, err)
	require.Len(t, unc, l.Len())

	for _, u := range unc {
		assert.GreaterOrEqual(t, u, 0.0)
		assert.LessOrEqual(t, u, 1.0)
	}

	// The far corner of the padding is the most remote cell
	corner := unc[0]
	assert.InDelta(t, distanceShare+densityShare, corner, 1e-12)

	// A cell on a sample has no distance term and one neighbour
	onSample := unc[l.Index(4, 4)]
	lat, lng := l.At(l.Index(4, 4))
	require.InDelta(t, 0.5, lat, 1e-12)
	require.InDelta(t, 0.5, lng, 1e-12)
	assert.InDelta(t, densityShare*(1-1.0/SaturationCount), onSample, 1e-12)
	assert.Less(t, onSample, corner)
}

func TestEstimateDenseCluster(t *testing.T) {
	points := []models.SamplePoint{
		{Lat: 0, Lng: 0},
		{Lat: 0.01, Lng: 0},
		{Lat: 0, Lng: 0.01},
		{Lat: 0.01, Lng: 0.01},
		{Lat: 0.02, Lng: 0.02},
		{Lat: 0.005, Lng: 0.005},
	}
	l, err := grid.Build(points, 0.01)
	require.NoError(t, err)

	unc, err := Estimate(points, l)
	require.NoError(t, err)

	// Six neighbours saturate the density term
	i := l.Index(2, 2)
	lat, lng := l.At(i)
	require.InDelta(t, 0, lat, 1e-12)
	require.InDelta(t, 0, lng, 1e-12)
	assert.InDelta(t, 0, unc[i], 1e-12)
}

func TestEstimateSingleLocation(t *testing.T) {
	// Every sample at one spot still yields finite scores
	points := []models.SamplePoint{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 1}}
	l, err := grid.Build(points, 0.1)
	require.NoError(t, err)

	unc, err := Estimate(points, l)
	require.NoError(t, err)
	for _, u := range unc {
		assert.GreaterOrEqual(t, u, 0.0)
		assert.LessOrEqual(t, u, 1.0)
	}
}

func TestEstimateNoSamples(t *testing.T) {
	l := &grid.Lattice{Resolution: 1, Rows: 2, Cols: 2}
	_, err := Estimate(nil, l)
	assert.True(t, errors.Is(err, models.ErrInsufficientSamples))
}
