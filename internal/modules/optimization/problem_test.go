package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewProblem_DerivesStatistics(t *testing.T) {
	// Three observations of two assets, column-major asset series.
	returns := mat.NewDense(3, 2, []float64{
		0.01, 0.02,
		0.02, 0.00,
		0.03, 0.04,
	})

	p, err := NewProblem(returns)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Dim())

	mean := p.MeanReturns()
	assert.InDelta(t, 0.02, mean[0], 1e-12)
	assert.InDelta(t, 0.02, mean[1], 1e-12)

	// Sample covariance (n-1 normalization).
	cov := p.Covariance()
	assert.InDelta(t, 0.0001, cov.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0004, cov.At(1, 1), 1e-12)
	assert.InDelta(t, 0.0001, cov.At(0, 1), 1e-12)
	assert.InDelta(t, cov.At(0, 1), cov.At(1, 0), 1e-15)
}

func TestNewProblem_TooFewObservations(t *testing.T) {
	returns := mat.NewDense(1, 3, []float64{0.01, 0.02, 0.03})
	_, err := NewProblem(returns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 time steps")
}

func TestNewProblemFromStats(t *testing.T) {
	cov := mat.NewSymDense(2, []float64{
		0.0004, 0.0,
		0.0, 0.0009,
	})

	p, err := NewProblemFromStats([]float64{0.01, 0.02}, cov)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Dim())
	assert.Equal(t, []float64{0.01, 0.02}, p.MeanReturns())
}

func TestNewProblemFromStats_DimensionMismatch(t *testing.T) {
	cov := mat.NewSymDense(3, nil)
	_, err := NewProblemFromStats([]float64{0.01, 0.02}, cov)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestNewProblemFromStats_EmptyMean(t *testing.T) {
	_, err := NewProblemFromStats(nil, mat.NewSymDense(1, nil))
	require.Error(t, err)
}

func TestProblem_MeanReturnsIsCopy(t *testing.T) {
	p := newTwoAssetProblem(t)
	mean := p.MeanReturns()
	mean[0] = 99
	assert.Equal(t, []float64{0.01, 0.02}, p.MeanReturns(),
		"mutating the returned slice must not affect the problem")
}
