// Package interpolation estimates the target variable at arbitrary
// locations from scattered samples. Two estimators are provided behind the
// Regressor interface: plain inverse distance weighting and a heuristic
// predictor-weighted variant of it.
package interpolation

import (
	"fmt"
	"math"

	"spatialrpe/internal/models"
)

// CoincidenceEpsilon is the distance below which a query location is
// treated as sitting exactly on a sample.
const CoincidenceEpsilon = 1e-4

// DefaultPower is the distance exponent used when none is configured.
const DefaultPower = 2.0

// Observation is the numeric view of a sample used by the estimators.
type Observation struct {
	Lat, Lng float64
	Value    float64
}

// Observations pairs every point with its target value. It fails with
// models.ErrMissingTargetField if any point lacks a numeric target.
func Observations(points []models.SamplePoint, target string) ([]Observation, error) {
	values, err := models.TargetValues(points, target)
	if err != nil {
		return nil, err
	}
	obs := make([]Observation, len(points))
	for i, p := range points {
		obs[i] = Observation{Lat: p.Lat, Lng: p.Lng, Value: values[i]}
	}
	return obs, nil
}

// Estimate computes the inverse distance weighted value at (lat, lng).
// Each observation is weighted by 1/d^power using planar Euclidean
// distance on (lat, lng). A query within CoincidenceEpsilon of an
// observation returns that observation's value exactly; when several are
// coincident the last one in obs wins. With no usable weight the result is 0.
func Estimate(obs []Observation, lat, lng, power float64) float64 {
	return weightedEstimate(obs, nil, lat, lng, power)
}

// weightedEstimate is Estimate with an optional per-observation multiplier
// applied on top of the distance weight. factors may be nil.
func weightedEstimate(obs []Observation, factors []float64, lat, lng, power float64) float64 {
	var (
		weightedSum float64
		totalWeight float64
		coincident  bool
		exact       float64
	)

	for i, o := range obs {
		dLat := lat - o.Lat
		dLng := lng - o.Lng
		dist := math.Sqrt(dLat*dLat + dLng*dLng)

		if dist < CoincidenceEpsilon {
			coincident = true
			exact = o.Value
			continue
		}
		if coincident {
			continue
		}

		weight := 1.0 / math.Pow(dist, power)
		if factors != nil {
			weight *= factors[i]
		}
		weightedSum += weight * o.Value
		totalWeight += weight
	}

	if coincident {
		return exact
	}
	if totalWeight == 0 || math.IsNaN(totalWeight) || math.IsInf(totalWeight, 0) {
		return 0
	}
	return weightedSum / totalWeight
}

// IDW fits plain inverse distance weighting models.
type IDW struct {
	// Target is the property interpolated
	Target string

	// Power is the distance exponent; zero selects DefaultPower
	Power float64
}

// Fit implements Regressor.
func (r IDW) Fit(samples []models.SamplePoint) (Model, error) {
	obs, err := Observations(samples, r.Target)
	if err != nil {
		return nil, fmt.Errorf("fitting idw: %w", err)
	}
	return &idwModel{obs: obs, power: powerOrDefault(r.Power)}, nil
}

type idwModel struct {
	obs   []Observation
	power float64
}

func (m *idwModel) Predict(lat, lng float64) float64 {
	return Estimate(m.obs, lat, lng, m.power)
}

func (m *idwModel) FeatureImportance() []models.FeatureImportance {
	return nil
}

func powerOrDefault(p float64) float64 {
	if p == 0 {
		return DefaultPower
	}
	return p
}
