package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFitness_NegatedSharpe(t *testing.T) {
	mean := mat.NewVecDense(2, []float64{0.1, 0.2})
	cov := mat.NewSymDense(2, []float64{
		0.04, 0.0,
		0.0, 0.09,
	})

	// Equal weights: return 0.15, variance 0.25*0.04 + 0.25*0.09 = 0.0325.
	got := Fitness([]float64{0.5, 0.5}, mean, cov)
	want := -0.15 / math.Sqrt(0.0325)
	assert.InDelta(t, want, got, 1e-12)
	assert.Negative(t, got, "positive Sharpe ratios minimize as negative fitness")
}

func TestFitness_CorrelatedAssets(t *testing.T) {
	mean := mat.NewVecDense(2, []float64{0.01, 0.02})
	cov := mat.NewSymDense(2, []float64{
		0.0004, 0.0002,
		0.0002, 0.0009,
	})

	w := []float64{0.3, 0.7}
	variance := 0.09*0.0004 + 0.49*0.0009 + 2*0.3*0.7*0.0002
	want := -(0.3*0.01 + 0.7*0.02) / math.Sqrt(variance)
	assert.InDelta(t, want, Fitness(w, mean, cov), 1e-12)
}

func TestFitness_ZeroVariance(t *testing.T) {
	mean := mat.NewVecDense(2, []float64{0.01, 0.02})
	cov := mat.NewSymDense(2, nil)

	got := Fitness([]float64{0.5, 0.5}, mean, cov)
	assert.False(t, isFinite(got), "zero portfolio variance must not produce a finite fitness")
}

func TestFitness_NegativeVariance(t *testing.T) {
	mean := mat.NewVecDense(2, []float64{0.01, 0.02})
	cov := mat.NewSymDense(2, []float64{
		-0.01, 0.0,
		0.0, -0.01,
	})

	got := Fitness([]float64{0.5, 0.5}, mean, cov)
	assert.True(t, math.IsNaN(got), "negative quadratic form yields NaN through sqrt")
}

func TestProblem_SharpeNegatesFitness(t *testing.T) {
	p := newTwoAssetProblem(t)
	w := []float64{0.4, 0.6}
	assert.InDelta(t, -p.Fitness(w), p.Sharpe(w), 1e-15)
}

func TestBetterFitness(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"lower is better", -1.0, -0.5, true},
		{"higher is worse", -0.5, -1.0, false},
		{"equal is not better", -1.0, -1.0, false},
		{"NaN never better", nan, -1.0, false},
		{"finite beats NaN", -1.0, nan, true},
		{"NaN vs NaN", nan, nan, false},
		{"neg inf beats finite", math.Inf(-1), -100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, betterFitness(tt.a, tt.b))
		})
	}
}

func TestSortByFitness_NaNLast(t *testing.T) {
	population := [][]float64{
		{0.1, 0.9},
		{0.2, 0.8},
		{0.3, 0.7},
		{0.4, 0.6},
	}
	fitness := []float64{-0.5, math.NaN(), -1.2, -0.8}

	sortByFitness(population, fitness)

	assert.Equal(t, []float64{0.3, 0.7}, population[0])
	assert.Equal(t, -1.2, fitness[0])
	assert.Equal(t, -0.8, fitness[1])
	assert.Equal(t, -0.5, fitness[2])
	assert.True(t, math.IsNaN(fitness[3]), "NaN entries sort last")
	assert.Equal(t, []float64{0.2, 0.8}, population[3])
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// newTwoAssetProblem builds the reference two-asset problem used across the
// engine tests: independent assets whose tangency portfolio is roughly
// [0.53, 0.47] with a Sharpe ratio of sqrt(0.25 + 4/9) ~= 0.8333.
func newTwoAssetProblem(t *testing.T) *Problem {
	t.Helper()
	cov := mat.NewSymDense(2, []float64{
		0.0004, 0.0,
		0.0, 0.0009,
	})
	p, err := NewProblemFromStats([]float64{0.01, 0.02}, cov)
	require.NoError(t, err)
	return p
}
