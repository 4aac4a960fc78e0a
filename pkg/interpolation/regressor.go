package interpolation

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"spatialrpe/internal/models"
	"spatialrpe/pkg/grid"
)

// Regressor fits a Model from samples. Implementations must not retain or
// modify the samples slice beyond what the returned Model needs.
type Regressor interface {
	Fit(samples []models.SamplePoint) (Model, error)
}

// Model predicts the target variable at a location. Predict must be safe
// for concurrent use.
type Model interface {
	Predict(lat, lng float64) float64

	// FeatureImportance returns the predictor ranking, most important
	// first, or nil for models that use no predictors.
	FeatureImportance() []models.FeatureImportance
}

// PredictGrid evaluates m at every lattice cell in row-major order. Rows are
// split into one contiguous band per CPU; each cell is written exactly once
// so the result does not depend on scheduling. The context is checked once
// per row.
func PredictGrid(ctx context.Context, m Model, l *grid.Lattice) ([]float64, error) {
	values := make([]float64, l.Len())

	workers := runtime.NumCPU()
	if workers > l.Rows {
		workers = l.Rows
	}
	if workers < 1 {
		return values, ctx.Err()
	}
	rowsPerWorker := (l.Rows + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < l.Rows; start += rowsPerWorker {
		start := start
		end := start + rowsPerWorker
		if end > l.Rows {
			end = l.Rows
		}
		g.Go(func() error {
			for row := start; row < end; row++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				for col := 0; col < l.Cols; col++ {
					i := l.Index(row, col)
					lat, lng := l.At(i)
					values[i] = m.Predict(lat, lng)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}
