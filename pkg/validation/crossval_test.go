package validation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spatialrpe/internal/models"
	"spatialrpe/pkg/grid"
)

// scatter returns n samples on a slightly irregular diagonal pattern
func scatter(n int) []models.SamplePoint {
	points := make([]models.SamplePoint, n)
	for i := range points {
		lat := float64(i%4)*0.3 + float64(i)*0.01
		lng := float64(i/4)*0.4 + float64(i%3)*0.05
		points[i] = models.SamplePoint{
			Lat:        lat,
			Lng:        lng,
			Properties: map[string]any{"v": float64(i*i%7) + lat},
		}
	}
	return points
}

func TestFoldBounds(t *testing.T) {
	tests := []struct {
		name string
		n, k int
		want [][2]int
	}{
		{"even", 10, 5, [][2]int{{0, 2}, {2, 4}, {4, 6}, {6, 8}, {8, 10}}},
		{"remainder in last fold", 7, 3, [][2]int{{0, 2}, {2, 4}, {4, 7}}},
		{"one per fold", 3, 3, [][2]int{{0, 1}, {1, 2}, {2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FoldBounds(tt.n, tt.k))
		})
	}
}

func TestCrossValidate(t *testing.T) {
	points := scatter(10)
	res, err := CrossValidate(context.Background(), points, "v", 5, 2)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Folds)
	require.Len(t, res.Residuals, 10)

	for i, r := range res.Residuals {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, i/2, r.Fold)
		assert.Equal(t, points[i].Lat, r.Lat)
		assert.InDelta(t, r.Observed-r.Predicted, r.Residual, 1e-12)

		v, ok := res.Lookup(Key(r.Lat, r.Lng))
		require.True(t, ok)
		assert.Equal(t, r.Residual, v)
	}

	values := res.Values()
	require.Len(t, values, 10)
	assert.Equal(t, res.Residuals[3].Residual, values[3])
}

func TestCrossValidateHoldsOut(t *testing.T) {
	// A held-out sample never sees its own value, so a spike is not
	// predicted exactly
	points := []models.SamplePoint{
		{Lat: 0, Lng: 0, Properties: map[string]any{"v": 1.0}},
		{Lat: 0, Lng: 1, Properties: map[string]any{"v": 1.0}},
		{Lat: 1, Lng: 0, Properties: map[string]any{"v": 100.0}},
		{Lat: 1, Lng: 1, Properties: map[string]any{"v": 1.0}},
	}
	res, err := CrossValidate(context.Background(), points, "v", 4, 2)
	require.NoError(t, err)

	assert.InDelta(t, 99.0, res.Residuals[2].Residual, 1e-9)
}

func TestPropagateUsesNearestSample(t *testing.T) {
	points := scatter(10)
	res, err := CrossValidate(context.Background(), points, "v", 5, 2)
	require.NoError(t, err)

	l, err := grid.Build(points, 0.1)
	require.NoError(t, err)

	surface := res.Propagate(l)
	require.Len(t, surface, l.Len())

	for i, got := range surface {
		lat, lng := l.At(i)

		best := math.Inf(1)
		for _, p := range points {
			best = math.Min(best, math.Hypot(p.Lat-lat, p.Lng-lng))
		}

		// Equidistant samples may resolve either way
		var candidates []float64
		for j, p := range points {
			if math.Hypot(p.Lat-lat, p.Lng-lng) <= best+1e-12 {
				candidates = append(candidates, res.Residuals[j].Residual)
			}
		}
		assert.Contains(t, candidates, got, "cell %d", i)
	}
}

func TestPropagateDuplicateLocations(t *testing.T) {
	points := []models.SamplePoint{
		{Lat: 0, Lng: 0, Properties: map[string]any{"v": 1.0}},
		{Lat: 0, Lng: 0, Properties: map[string]any{"v": 5.0}},
		{Lat: 2, Lng: 2, Properties: map[string]any{"v": 3.0}},
		{Lat: 2, Lng: 0, Properties: map[string]any{"v": 2.0}},
	}
	res, err := CrossValidate(context.Background(), points, "v", 2, 2)
	require.NoError(t, err)

	// Both samples at the origin share the later one's residual
	v, ok := res.Lookup(Key(0, 0))
	require.True(t, ok)
	assert.Equal(t, res.Residuals[1].Residual, v)

	l, err := grid.Build(points, 1)
	require.NoError(t, err)
	surface := res.Propagate(l)

	origin := -1
	for i := 0; i < l.Len(); i++ {
		lat, lng := l.At(i)
		if lat == 0 && lng == 0 {
			origin = i
		}
	}
	require.NotEqual(t, -1, origin)
	assert.Equal(t, res.Residuals[1].Residual, surface[origin])
}

func TestCrossValidateErrors(t *testing.T) {
	ctx := context.Background()

	_, err := CrossValidate(ctx, scatter(10), "v", 1, 2)
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))

	_, err = CrossValidate(ctx, scatter(4), "v", 5, 2)
	assert.True(t, errors.Is(err, models.ErrInsufficientSamples))

	_, err = CrossValidate(ctx, scatter(2), "v", 2, 2)
	assert.True(t, errors.Is(err, models.ErrInsufficientSamples))

	_, err = CrossValidate(ctx, scatter(5), "missing", 2, 2)
	assert.True(t, errors.Is(err, models.ErrMissingTargetField))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = CrossValidate(cancelled, scatter(5), "v", 2, 2)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAccuracy(t *testing.T) {
	in := []float64{-2, 0, 3.5}
	assert.Equal(t, []float64{2, 0, 3.5}, Accuracy(in))
	assert.Equal(t, -2.0, in[0], "input must not be modified")
}
