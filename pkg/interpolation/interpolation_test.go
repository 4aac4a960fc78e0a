package interpolation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spatialrpe/internal/models"
	"spatialrpe/pkg/grid"
)

func sample(lat, lng float64, props map[string]any) models.SamplePoint {
	return models.SamplePoint{Lat: lat, Lng: lng, Properties: props}
}

// squareWithCenter returns the unit square corners plus its centre with a
// checkerboard target
func squareWithCenter() []models.SamplePoint {
	return []models.SamplePoint{
		sample(0, 0, map[string]any{"v": 0.0}),
		sample(0, 1, map[string]any{"v": 10.0}),
		sample(1, 0, map[string]any{"v": 10.0}),
		sample(1, 1, map[string]any{"v": 0.0}),
		sample(0.5, 0.5, map[string]any{"v": 5.0}),
	}
}

func TestEstimateExactAtSamples(t *testing.T) {
	obs, err := Observations(squareWithCenter(), "v")
	require.NoError(t, err)

	for _, o := range obs {
		assert.Equal(t, o.Value, Estimate(obs, o.Lat, o.Lng, 2))
	}

	// Within the coincidence tolerance the sample value is returned as is
	assert.Equal(t, 5.0, Estimate(obs, 0.5+CoincidenceEpsilon/2, 0.5, 2))
}

func TestEstimateWeighting(t *testing.T) {
	obs := []Observation{
		{Lat: 0, Lng: 0, Value: 0},
		{Lat: 0, Lng: 1, Value: 10},
	}

	// Weights 16 and 16/9
	assert.InDelta(t, 1.0, Estimate(obs, 0, 0.25, 2), 1e-12)
	assert.InDelta(t, 5.0, Estimate(obs, 0, 0.5, 2), 1e-12)

	// Moving towards the high sample never lowers the estimate
	prev := Estimate(obs, 0, 0.01, 2)
	for lng := 0.05; lng < 1; lng += 0.05 {
		v := Estimate(obs, 0, lng, 2)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestEstimateBounded(t *testing.T) {
	obs, err := Observations(squareWithCenter(), "v")
	require.NoError(t, err)

	for lat := -2.0; lat <= 3; lat += 0.37 {
		for lng := -2.0; lng <= 3; lng += 0.41 {
			v := Estimate(obs, lat, lng, 2)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 10.0+1e-9)
		}
	}
}

func TestEstimateLastCoincidentWins(t *testing.T) {
	obs := []Observation{
		{Lat: 1, Lng: 1, Value: 3},
		{Lat: 2, Lng: 2, Value: 100},
		{Lat: 1, Lng: 1, Value: 7},
	}
	assert.Equal(t, 7.0, Estimate(obs, 1, 1, 2))
}

func TestEstimateEmpty(t *testing.T) {
	assert.Zero(t, Estimate(nil, 3, 4, 2))
}

func TestIDWFit(t *testing.T) {
	m, err := IDW{Target: "v"}.Fit(squareWithCenter())
	require.NoError(t, err)

	assert.Equal(t, 10.0, m.Predict(0, 1))
	assert.Nil(t, m.FeatureImportance())

	// Zero power falls back to the default exponent
	obs, _ := Observations(squareWithCenter(), "v")
	assert.Equal(t, Estimate(obs, 0.2, 0.7, DefaultPower), m.Predict(0.2, 0.7))
}

func TestIDWFitMissingTarget(t *testing.T) {
	points := squareWithCenter()
	points[2].Properties = map[string]any{"other": 1.0}

	_, err := IDW{Target: "v"}.Fit(points)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMissingTargetField))
}

func TestHeuristicImportance(t *testing.T) {
	points := []models.SamplePoint{
		sample(0, 0, map[string]any{"v": 1.0, "elev": 10.0, "noise": 3.0}),
		sample(0, 1, map[string]any{"v": 2.0, "elev": 20.0, "noise": 1.0}),
		sample(1, 0, map[string]any{"v": 3.0, "elev": 30.0, "noise": 4.0}),
		sample(1, 1, map[string]any{"v": 4.0, "elev": 40.0, "noise": 1.0}),
		sample(2, 2, map[string]any{"v": 5.0, "elev": 50.0, "noise": 5.0}),
	}

	m, err := Heuristic{Target: "v", Predictors: []string{"noise", "elev"}}.Fit(points)
	require.NoError(t, err)

	imp := m.FeatureImportance()
	require.Len(t, imp, 2)
	assert.Equal(t, "elev", imp[0].Feature)
	assert.Equal(t, "noise", imp[1].Feature)
	assert.GreaterOrEqual(t, imp[0].Importance, imp[1].Importance)
	assert.InDelta(t, 1.0, imp[0].Importance+imp[1].Importance, 1e-12)

	// Callers get their own copy
	imp[0].Importance = -1
	assert.NotEqual(t, -1.0, m.FeatureImportance()[0].Importance)

	// Still exact at the samples
	assert.Equal(t, 3.0, m.Predict(1, 0))
}

func TestHeuristicUncorrelatedPredictors(t *testing.T) {
	points := []models.SamplePoint{
		sample(0, 0, map[string]any{"v": 1.0, "a": 0.0, "b": 0.0}),
		sample(0, 1, map[string]any{"v": 2.0, "a": 0.0, "b": 0.0}),
		sample(1, 0, map[string]any{"v": 3.0, "a": 0.0}),
		sample(1, 1, map[string]any{"v": 4.0}),
	}

	m, err := Heuristic{Target: "v", Predictors: []string{"a", "b"}}.Fit(points)
	require.NoError(t, err)

	imp := m.FeatureImportance()
	require.Len(t, imp, 2)
	assert.Equal(t, []models.FeatureImportance{
		{Feature: "a", Importance: 0.5},
		{Feature: "b", Importance: 0.5},
	}, imp)

	// All factors are one, so the heuristic reduces to plain IDW
	idw, err := IDW{Target: "v"}.Fit(points)
	require.NoError(t, err)
	assert.InDelta(t, idw.Predict(0.3, 0.6), m.Predict(0.3, 0.6), 1e-12)
}

func TestHeuristicErrors(t *testing.T) {
	_, err := Heuristic{Target: "v"}.Fit(squareWithCenter())
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))

	_, err = Heuristic{Target: "missing", Predictors: []string{"v"}}.Fit(squareWithCenter())
	assert.True(t, errors.Is(err, models.ErrMissingTargetField))
}

func TestPredictGrid(t *testing.T) {
	points := squareWithCenter()
	l, err := grid.Build(points, 0.5)
	require.NoError(t, err)

	m, err := IDW{Target: "v"}.Fit(points)
	require.NoError(t, err)

	values, err := PredictGrid(context.Background(), m, l)
	require.NoError(t, err)
	require.Len(t, values, l.Len())

	for i, v := range values {
		lat, lng := l.At(i)
		assert.Equal(t, m.Predict(lat, lng), v)
	}

	// The cell on the centre sample carries its value
	centre := l.Index(3, 3)
	lat, lng := l.At(centre)
	require.InDelta(t, 0.5, lat, 1e-12)
	require.InDelta(t, 0.5, lng, 1e-12)
	assert.Equal(t, 5.0, values[centre])
}

func TestPredictGridCancelled(t *testing.T) {
	points := squareWithCenter()
	l, err := grid.Build(points, 0.5)
	require.NoError(t, err)
	m, err := IDW{Target: "v"}.Fit(points)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = PredictGrid(ctx, m, l)
	assert.True(t, errors.Is(err, context.Canceled))
}
