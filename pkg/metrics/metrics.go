// Package metrics summarises prediction accuracy from cross-validation
// residuals.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary holds the accuracy statistics of a run.
type Summary struct {
	// RMSE is the root mean square of held-out residuals. Lower is better.
	RMSE float64 `json:"rmse"`

	// MAE is the mean absolute held-out residual.
	MAE float64 `json:"mae"`

	// R2 is the coefficient of determination of the held-out predictions
	// against the observations. Zero when the observations do not vary.
	R2 float64 `json:"r2"`

	// Bias is the mean of predicted - observed; positive means the model
	// overestimates.
	Bias float64 `json:"bias"`

	// BiasPValue is the two-tailed p-value of a one-sample t-test of the
	// held-out errors against zero. Small values flag systematic bias.
	BiasPValue float64 `json:"biasPValue"`

	// Mean and Variance describe the observed target values. Variance is the
	// unbiased sample variance, zero for a single sample.
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`

	SampleCount int `json:"sampleCount"`
}

// FromResiduals computes the summary from paired observations and held-out
// predictions.
func FromResiduals(observed, predicted []float64) (Summary, error) {
	if len(observed) != len(predicted) {
		return Summary{}, fmt.Errorf("observed has %d values, predicted has %d", len(observed), len(predicted))
	}
	n := len(observed)
	if n == 0 {
		return Summary{}, nil
	}

	diffs := make([]float64, n)
	var sq, abs, signed float64
	for i := range observed {
		diff := predicted[i] - observed[i]
		diffs[i] = diff
		sq += diff * diff
		abs += math.Abs(diff)
		signed += diff
	}

	s := Summary{
		RMSE:        math.Sqrt(sq / float64(n)),
		MAE:         abs / float64(n),
		Bias:        signed / float64(n),
		BiasPValue:  1,
		SampleCount: n,
	}

	if n == 1 {
		s.Mean = observed[0]
		return s, nil
	}

	s.BiasPValue = biasPValue(s.Bias, stat.StdDev(diffs, nil), n)
	s.Mean, s.Variance = stat.MeanVariance(observed, nil)
	if s.Variance > 0 {
		s.R2 = stat.RSquaredFrom(predicted, observed, nil)
	}
	return s, nil
}

// biasPValue tests mean error against zero with n-1 degrees of freedom.
func biasPValue(bias, sd float64, n int) float64 {
	if bias == 0 {
		return 1
	}
	if sd == 0 {
		return 0
	}
	t := bias / (sd / math.Sqrt(float64(n)))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	return 2 * (1 - tDist.CDF(math.Abs(t)))
}
