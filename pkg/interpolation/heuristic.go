package interpolation

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"spatialrpe/internal/models"
)

// predictorGain scales how strongly predictor values raise a sample's weight.
const predictorGain = 0.01

// Heuristic blends inverse distance weighting with predictor variables.
// It is not a trained regressor: each sample's distance weight is scaled by
//
//	1 + 0.01 * sum(importance_j * predictor_j)
//
// where the importances are the normalised absolute Pearson correlations of
// each predictor with the target. A predictor absent on a sample contributes
// zero for that sample.
type Heuristic struct {
	Target     string
	Predictors []string

	// Power is the distance exponent; zero selects DefaultPower
	Power float64
}

// Fit implements Regressor.
func (h Heuristic) Fit(samples []models.SamplePoint) (Model, error) {
	if len(h.Predictors) == 0 {
		return nil, fmt.Errorf("%w: heuristic regression needs at least one predictor", models.ErrInvalidConfig)
	}

	obs, err := Observations(samples, h.Target)
	if err != nil {
		return nil, fmt.Errorf("fitting heuristic: %w", err)
	}

	columns := make([][]float64, len(h.Predictors))
	for j, name := range h.Predictors {
		col := make([]float64, len(samples))
		for i, p := range samples {
			if v, ok := p.Number(name); ok {
				col[i] = v
			}
		}
		columns[j] = col
	}

	target := make([]float64, len(obs))
	for i, o := range obs {
		target[i] = o.Value
	}

	importance := rankPredictors(h.Predictors, columns, target)

	weightOf := make(map[string]float64, len(importance))
	for _, fi := range importance {
		weightOf[fi.Feature] = fi.Importance
	}

	factors := make([]float64, len(samples))
	for i := range samples {
		var s float64
		for j, name := range h.Predictors {
			s += weightOf[name] * columns[j][i]
		}
		factors[i] = 1 + predictorGain*s
	}

	return &heuristicModel{
		obs:        obs,
		factors:    factors,
		power:      powerOrDefault(h.Power),
		importance: importance,
	}, nil
}

// rankPredictors scores every predictor by |corr(predictor, target)|,
// normalises the scores to sum to one and sorts them descending. Ties keep
// the configured order. When no predictor correlates at all the weight is
// split evenly.
func rankPredictors(names []string, columns [][]float64, target []float64) []models.FeatureImportance {
	scores := make([]float64, len(names))
	var total float64
	for j := range names {
		c := stat.Correlation(columns[j], target, nil)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			c = 0
		}
		scores[j] = math.Abs(c)
		total += scores[j]
	}

	out := make([]models.FeatureImportance, len(names))
	for j, name := range names {
		imp := 1 / float64(len(names))
		if total > 0 {
			imp = scores[j] / total
		}
		out[j] = models.FeatureImportance{Feature: name, Importance: imp}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Importance > out[b].Importance
	})
	return out
}

type heuristicModel struct {
	obs        []Observation
	factors    []float64
	power      float64
	importance []models.FeatureImportance
}

func (m *heuristicModel) Predict(lat, lng float64) float64 {
	return weightedEstimate(m.obs, m.factors, lat, lng, m.power)
}

func (m *heuristicModel) FeatureImportance() []models.FeatureImportance {
	out := make([]models.FeatureImportance, len(m.importance))
	copy(out, m.importance)
	return out
}
