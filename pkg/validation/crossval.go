// Package validation estimates prediction error with k-fold cross-validation
// and spreads the held-out residuals over the analysis lattice.
package validation

import (
	"context"
	"fmt"
	"math"

	"spatialrpe/internal/models"
	"spatialrpe/pkg/geometry"
	"spatialrpe/pkg/grid"
	"spatialrpe/pkg/interpolation"
)

// Residual is the held-out error at one sample.
type Residual struct {
	// Index is the sample's position in the input slice
	Index int

	Lat, Lng  float64
	Observed  float64
	Predicted float64

	// Residual is Observed - Predicted
	Residual float64

	// Fold is the fold the sample was held out in
	Fold int
}

// Result holds the outcome of a cross-validation run.
type Result struct {
	// Folds is the number of folds used
	Folds int

	// Residuals has one entry per sample, in input order
	Residuals []Residual

	byKey map[string]float64
	keys  []string
	index *geometry.Index
}

// Key formats a location the way residuals are keyed: four decimals of
// latitude and longitude. Samples that share a key share a residual, the
// later sample's value winning.
func Key(lat, lng float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lng)
}

// FoldBounds partitions n items into k contiguous [start, end) ranges of
// n/k items each, the last range absorbing the remainder.
func FoldBounds(n, k int) [][2]int {
	size := n / k
	bounds := make([][2]int, k)
	for i := 0; i < k; i++ {
		start := i * size
		end := start + size
		if i == k-1 {
			end = n
		}
		bounds[i] = [2]int{start, end}
	}
	return bounds
}

// CrossValidate holds each fold out in turn, re-estimates its samples by
// inverse distance weighting from the remaining folds and records the
// signed residual. Folds follow input order; nothing is shuffled.
func CrossValidate(ctx context.Context, points []models.SamplePoint, target string, folds int, power float64) (*Result, error) {
	if folds < 2 {
		return nil, fmt.Errorf("%w: fold count must be at least 2, got %d", models.ErrInvalidConfig, folds)
	}
	if len(points) < models.MinSamples {
		return nil, fmt.Errorf("%w: cross-validation needs at least %d samples, got %d",
			models.ErrInsufficientSamples, models.MinSamples, len(points))
	}
	if folds > len(points) {
		return nil, fmt.Errorf("%w: %d folds requested for %d samples",
			models.ErrInsufficientSamples, folds, len(points))
	}
	if power == 0 {
		power = interpolation.DefaultPower
	}

	obs, err := interpolation.Observations(points, target)
	if err != nil {
		return nil, fmt.Errorf("cross-validation: %w", err)
	}

	res := &Result{
		Folds:     folds,
		Residuals: make([]Residual, len(obs)),
		byKey:     make(map[string]float64, len(obs)),
		keys:      make([]string, len(obs)),
		index:     geometry.NewIndex(points),
	}

	training := make([]interpolation.Observation, 0, len(obs))
	for f, b := range FoldBounds(len(obs), folds) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		training = training[:0]
		training = append(training, obs[:b[0]]...)
		training = append(training, obs[b[1]:]...)

		for i := b[0]; i < b[1]; i++ {
			o := obs[i]
			predicted := interpolation.Estimate(training, o.Lat, o.Lng, power)
			res.Residuals[i] = Residual{
				Index:     i,
				Lat:       o.Lat,
				Lng:       o.Lng,
				Observed:  o.Value,
				Predicted: predicted,
				Residual:  o.Value - predicted,
				Fold:      f,
			}
		}
	}

	// Keys are assigned in input order so duplicates resolve the same way
	// regardless of fold layout.
	for i, r := range res.Residuals {
		k := Key(r.Lat, r.Lng)
		res.keys[i] = k
		res.byKey[k] = r.Residual
	}

	return res, nil
}

// Lookup returns the residual recorded under a location key.
func (r *Result) Lookup(key string) (float64, bool) {
	v, ok := r.byKey[key]
	return v, ok
}

// Values returns the signed residuals in input order.
func (r *Result) Values() []float64 {
	out := make([]float64, len(r.Residuals))
	for i, res := range r.Residuals {
		out[i] = res.Residual
	}
	return out
}

// Propagate assigns every lattice cell the residual of its nearest sample.
// This is a nearest-neighbour lookup, not an interpolation of residuals.
func (r *Result) Propagate(l *grid.Lattice) []float64 {
	out := make([]float64, l.Len())
	for i := range out {
		lat, lng := l.At(i)
		nearest, _ := r.index.Nearest(lat, lng)
		if nearest < 0 {
			continue
		}
		out[i] = r.byKey[r.keys[nearest]]
	}
	return out
}

// Accuracy converts a residual surface into an absolute error surface.
func Accuracy(residuals []float64) []float64 {
	out := make([]float64, len(residuals))
	for i, v := range residuals {
		out[i] = math.Abs(v)
	}
	return out
}
