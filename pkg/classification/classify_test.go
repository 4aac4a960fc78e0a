package classification

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spatialrpe/internal/models"
)

func ramp(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	return values
}

func TestQuantileEqualCounts(t *testing.T) {
	classes, breaks, err := Classify(ramp(100), 4, Quantile)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 25, 50, 75, 99}, breaks)

	counts := make([]int, 4)
	for _, c := range classes {
		counts[c]++
	}
	assert.Equal(t, []int{25, 25, 25, 25}, counts)
}

func TestEqualInterval(t *testing.T) {
	values := []float64{0, 2, 10, 5.5}
	classes, breaks, err := Classify(values, 5, EqualInterval)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 2, 4, 6, 8, 10}, breaks)
	assert.Equal(t, []int{0, 1, 4, 2}, classes)
}

func TestSortedIndex(t *testing.T) {
	// Input order does not matter
	values := []float64{10, 3, 7, 0, 1, 2, 4, 5, 6, 8, 9}
	breaks, err := Breaks(values, 2, SortedIndex)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 10}, breaks)
	assert.Equal(t, 10.0, values[0], "input must not be reordered")
}

func TestClassCoverage(t *testing.T) {
	values := []float64{3.2, -1, 8.7, 8.7, 0.4, 2.2, 5.1, -1, 6.6, 4.4, 7.9}
	for _, method := range []Method{EqualInterval, Quantile, SortedIndex} {
		for k := 1; k <= 6; k++ {
			classes, breaks, err := Classify(values, k, method)
			require.NoError(t, err)
			require.Len(t, breaks, k+1)
			require.Len(t, classes, len(values))

			for i := 1; i < len(breaks); i++ {
				assert.LessOrEqual(t, breaks[i-1], breaks[i], "%s k=%d", method, k)
			}
			for _, c := range classes {
				assert.GreaterOrEqual(t, c, 0)
				assert.LessOrEqual(t, c, k-1)
			}
		}
	}
}

func TestConstantSurface(t *testing.T) {
	values := []float64{4, 4, 4, 4 + 1e-15, 4}
	for _, method := range []Method{EqualInterval, Quantile, SortedIndex} {
		classes, _, err := Classify(values, 5, method)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 0, 0, 0, 0}, classes, string(method))
	}
}

func TestEmptySurface(t *testing.T) {
	classes, breaks, err := Classify(nil, 3, Quantile)
	require.NoError(t, err)
	assert.Empty(t, classes)
	assert.Nil(t, breaks)
}

func TestAssign(t *testing.T) {
	breaks := []float64{0, 1, 2, 3}
	tests := []struct {
		v    float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{0.99, 0},
		{1, 1},
		{2.5, 2},
		{3, 2},
		{30, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Assign(tt.v, breaks), "v=%v", tt.v)
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		name string
		want Method
	}{
		{"", EqualInterval},
		{"equal", EqualInterval},
		{"quantile", Quantile},
		{"sorted-index", SortedIndex},
		{"jenks", SortedIndex},
		{"natural-breaks", SortedIndex},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMethod("kmeans")
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
}

func TestInvalidClassCount(t *testing.T) {
	_, err := Breaks(ramp(10), 0, EqualInterval)
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))

	_, _, err = Classify(ramp(10), -2, Quantile)
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))

	_, err = Breaks(ramp(10), 3, Method("bogus"))
	assert.True(t, errors.Is(err, models.ErrInvalidConfig))
}
