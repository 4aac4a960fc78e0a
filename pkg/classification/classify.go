// Package classification buckets a continuous surface into ordinal classes.
package classification

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"spatialrpe/internal/models"
)

// Method selects how class breakpoints are placed.
type Method string

const (
	// EqualInterval spaces breakpoints evenly between min and max.
	EqualInterval Method = "equal"

	// Quantile places breakpoints at order statistics so classes hold
	// roughly equal counts.
	Quantile Method = "quantile"

	// SortedIndex places breakpoints at evenly stepped indices of the
	// sorted values. It is a cheap stand-in for natural breaks and does no
	// variance optimisation.
	SortedIndex Method = "sorted-index"
)

// ParseMethod maps a configured name to a Method. "jenks" and
// "natural-breaks" are accepted as aliases of SortedIndex.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "", string(EqualInterval):
		return EqualInterval, nil
	case string(Quantile):
		return Quantile, nil
	case string(SortedIndex), "jenks", "natural-breaks":
		return SortedIndex, nil
	default:
		return "", fmt.Errorf("%w: unknown classification method %q", models.ErrInvalidConfig, name)
	}
}

// Breaks returns numClasses+1 ascending breakpoints over values.
func Breaks(values []float64, numClasses int, method Method) ([]float64, error) {
	if numClasses <= 0 {
		return nil, fmt.Errorf("%w: class count must be positive, got %d", models.ErrInvalidConfig, numClasses)
	}
	if len(values) == 0 {
		return nil, nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)

	breaks := make([]float64, numClasses+1)
	switch method {
	case EqualInterval, "":
		lo, hi := sorted[0], sorted[n-1]
		step := (hi - lo) / float64(numClasses)
		for i := range breaks {
			breaks[i] = lo + float64(i)*step
		}
		breaks[numClasses] = hi
	case Quantile:
		for i := range breaks {
			idx := n * i / numClasses
			if idx > n-1 {
				idx = n - 1
			}
			breaks[i] = sorted[idx]
		}
	case SortedIndex:
		for i := range breaks {
			idx := int(math.Round(float64(i) * float64(n-1) / float64(numClasses)))
			breaks[i] = sorted[idx]
		}
	default:
		return nil, fmt.Errorf("%w: unknown classification method %q", models.ErrInvalidConfig, method)
	}
	return breaks, nil
}

// flatTolerance is the relative spread below which a surface is treated as
// constant; interpolating a constant field can leave ulp-level noise.
const flatTolerance = 1e-12

// Classify assigns every value the first class i with
// breaks[i] <= v < breaks[i+1]. Values at or above the last breakpoint fall
// in the top class. A constant surface is entirely class 0.
func Classify(values []float64, numClasses int, method Method) ([]int, []float64, error) {
	breaks, err := Breaks(values, numClasses, method)
	if err != nil {
		return nil, nil, err
	}

	classes := make([]int, len(values))
	if len(values) == 0 {
		return classes, breaks, nil
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if hi-lo <= flatTolerance*math.Max(1, math.Abs(hi)) {
		return classes, breaks, nil
	}

	for i, v := range values {
		classes[i] = Assign(v, breaks)
	}
	return classes, breaks, nil
}

// Assign returns the class of v under breaks (len(breaks)-1 classes).
func Assign(v float64, breaks []float64) int {
	top := len(breaks) - 2
	for i := 0; i <= top; i++ {
		if breaks[i] <= v && v < breaks[i+1] {
			return i
		}
	}
	if v >= breaks[top+1] {
		return top
	}
	return 0
}
