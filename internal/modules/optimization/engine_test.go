package optimization

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewEngine_KnownNames(t *testing.T) {
	p := newTwoAssetProblem(t)
	for _, name := range EngineNames {
		engine, err := NewEngine(name, p, rand.NewPCG(1, 2))
		require.NoError(t, err)
		assert.Equal(t, name, engine.Name())
	}
}

func TestNewEngine_UnknownName(t *testing.T) {
	p := newTwoAssetProblem(t)
	_, err := NewEngine("simulated_annealing", p, rand.NewPCG(1, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown engine")
}

func TestEngines_ResultContract(t *testing.T) {
	p := newFourAssetProblem(t)
	const (
		popSize     = 25
		generations = 60
	)

	for _, name := range EngineNames {
		t.Run(name, func(t *testing.T) {
			engine, err := NewEngine(name, p, rand.NewPCG(11, 17))
			require.NoError(t, err)

			res := engine.Run(popSize, generations)

			assert.Equal(t, name, res.Engine)
			require.Len(t, res.Weights, p.Dim())
			assertOnSimplex(t, res.Weights)
			require.Len(t, res.History, generations)

			for i := 1; i < len(res.History); i++ {
				assert.GreaterOrEqual(t, res.History[i], res.History[i-1],
					"best-so-far history must be non-decreasing")
			}
			assert.InDelta(t, res.History[generations-1], res.SharpeRatio, 1e-12,
				"final history entry matches the reported Sharpe ratio")
			assert.InDelta(t, p.Sharpe(res.Weights), res.SharpeRatio, 1e-12,
				"reported ratio matches re-evaluating the reported weights")
		})
	}
}

func TestEngines_Deterministic(t *testing.T) {
	p := newFourAssetProblem(t)

	for _, name := range EngineNames {
		t.Run(name, func(t *testing.T) {
			first, err := NewEngine(name, p, rand.NewPCG(99, 7))
			require.NoError(t, err)
			second, err := NewEngine(name, p, rand.NewPCG(99, 7))
			require.NoError(t, err)

			assert.Equal(t, first.Run(20, 30), second.Run(20, 30),
				"identical seeds must reproduce the run exactly")
		})
	}
}

func TestEngines_ConvergeOnTwoAssetProblem(t *testing.T) {
	// The tangency portfolio for this problem is about [0.53, 0.47] with a
	// Sharpe ratio of sqrt(0.25 + 4/9) ~= 0.8333.
	p := newTwoAssetProblem(t)

	for _, name := range EngineNames {
		t.Run(name, func(t *testing.T) {
			engine, err := NewEngine(name, p, rand.NewPCG(5, 23))
			require.NoError(t, err)

			res := engine.Run(40, 300)

			assert.Greater(t, res.SharpeRatio, 0.82)
			assertOnSimplex(t, res.Weights)
			assert.InDelta(t, 0.47, res.Weights[1], 0.15,
				"the optimum is a mix, not a corner portfolio")
		})
	}
}

func TestParticleSwarm_ConvergesTightly(t *testing.T) {
	p := newTwoAssetProblem(t)
	engine := NewParticleSwarmEngine(p, rand.NewPCG(5, 23))

	res := engine.Run(40, 300)
	assert.InDelta(t, 0.8333, res.SharpeRatio, 0.01)
}

func TestGreyWolf_ConvergesTightly(t *testing.T) {
	p := newTwoAssetProblem(t)
	engine := NewGreyWolfEngine(p, rand.NewPCG(5, 23))

	res := engine.Run(40, 300)
	assert.InDelta(t, 0.8333, res.SharpeRatio, 0.01)
}

func TestEngines_SingleAsset(t *testing.T) {
	cov := mat.NewSymDense(1, []float64{0.0004})
	p, err := NewProblemFromStats([]float64{0.01}, cov)
	require.NoError(t, err)

	for _, name := range EngineNames {
		t.Run(name, func(t *testing.T) {
			engine, err := NewEngine(name, p, rand.NewPCG(3, 1))
			require.NoError(t, err)

			res := engine.Run(10, 20)
			assert.Equal(t, []float64{1.0}, res.Weights,
				"the only feasible portfolio holds everything in one asset")
			assert.InDelta(t, 0.5, res.SharpeRatio, 1e-12)
		})
	}
}

func TestEngines_SurviveDegenerateCovariance(t *testing.T) {
	// A non-positive-definite covariance makes every fitness evaluation NaN.
	// Engines must still finish, return feasible weights and a full history.
	cov := mat.NewSymDense(2, []float64{
		-0.01, 0.0,
		0.0, -0.01,
	})
	p, err := NewProblemFromStats([]float64{0.01, 0.02}, cov)
	require.NoError(t, err)

	const generations = 15
	for _, name := range EngineNames {
		t.Run(name, func(t *testing.T) {
			engine, err := NewEngine(name, p, rand.NewPCG(8, 4))
			require.NoError(t, err)

			res := engine.Run(10, generations)
			assert.True(t, math.IsNaN(res.SharpeRatio))
			assertOnSimplex(t, res.Weights)
			assert.Len(t, res.History, generations)
		})
	}
}

func TestGreyWolf_PackSmallerThanLeaderCount(t *testing.T) {
	p := newTwoAssetProblem(t)
	engine := NewGreyWolfEngine(p, rand.NewPCG(2, 6))

	res := engine.Run(2, 25)
	assertOnSimplex(t, res.Weights)
	assert.Len(t, res.History, 25)
}

func TestBestTracker(t *testing.T) {
	population := [][]float64{
		{0.5, 0.5},
		{0.8, 0.2},
	}
	fitness := []float64{-0.5, -0.9}

	tracker := newBestTracker(population, fitness, 3)
	assert.Equal(t, []float64{0.8, 0.2}, tracker.weights)

	tracker.record()
	tracker.observe([]float64{0.6, 0.4}, -1.1)
	tracker.record()
	tracker.observe([]float64{0.1, 0.9}, -0.3) // worse, ignored
	tracker.record()

	res := tracker.result(EngineBat)
	assert.Equal(t, []float64{0.6, 0.4}, res.Weights)
	assert.InDelta(t, 1.1, res.SharpeRatio, 1e-15)
	assert.Equal(t, []float64{0.9, 1.1, 1.1}, res.History)
}

func TestBestTracker_CopiesObservedWeights(t *testing.T) {
	population := [][]float64{{0.5, 0.5}}
	tracker := newBestTracker(population, []float64{-0.5}, 1)

	candidate := []float64{0.7, 0.3}
	tracker.observe(candidate, -1.0)
	candidate[0] = 0.0

	assert.Equal(t, []float64{0.7, 0.3}, tracker.weights,
		"tracker must not alias the caller's buffer")
}

// newFourAssetProblem builds a well-conditioned four-asset problem with
// mildly correlated assets, used for the generic engine contract tests.
func newFourAssetProblem(t *testing.T) *Problem {
	t.Helper()
	cov := mat.NewSymDense(4, []float64{
		0.0004, 0.0001, 0.0000, 0.0001,
		0.0001, 0.0009, 0.0002, 0.0000,
		0.0000, 0.0002, 0.0006, 0.0001,
		0.0001, 0.0000, 0.0001, 0.0012,
	})
	p, err := NewProblemFromStats([]float64{0.012, 0.018, 0.009, 0.015}, cov)
	require.NoError(t, err)
	return p
}
