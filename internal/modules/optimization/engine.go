package optimization

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// Engine names, used in API requests, results records and reports.
const (
	EngineBat      = "bat"
	EngineGenetic  = "genetic"
	EnginePSO      = "particle_swarm"
	EngineGreyWolf = "grey_wolf"
)

// EngineNames lists all engines in reporting order.
var EngineNames = []string{EngineBat, EngineGenetic, EnginePSO, EngineGreyWolf}

// Result is the outcome of one engine run: the best feasible weights found,
// their Sharpe ratio, and the per-generation best-so-far convergence trace.
// History is non-decreasing by construction and has one entry per generation.
type Result struct {
	Engine      string    `json:"engine"`
	Weights     []float64 `json:"weights"`
	SharpeRatio float64   `json:"sharpe_ratio"`
	History     []float64 `json:"history"`
}

// Engine is a population-based stochastic optimizer. Run iterates a fixed
// number of generations over a population of the given size and returns the
// best solution found. Termination is purely generation-count based; no
// engine guarantees a global optimum.
//
// Engines have no failure path: degenerate numerical inputs flow through as
// non-finite values in the Result rather than errors (callers filter).
type Engine interface {
	Name() string
	Run(popSize, generations int) Result
}

// NewEngine constructs the named engine for a problem. Each engine instance
// owns its population state and random source; instances never share
// mutable state, so independent runs may execute concurrently.
func NewEngine(name string, p *Problem, src rand.Source) (Engine, error) {
	switch name {
	case EngineBat:
		return NewBatEngine(p, src), nil
	case EngineGenetic:
		return NewGeneticEngine(p, src), nil
	case EnginePSO:
		return NewParticleSwarmEngine(p, src), nil
	case EngineGreyWolf:
		return NewGreyWolfEngine(p, src), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

// betterFitness reports whether a is a strictly better (lower) fitness than
// b. NaN is never better than anything; any non-NaN value beats NaN. This
// keeps engines from crashing or stalling on candidates whose variance
// degenerated (ill-conditioned covariance, see Problem).
func betterFitness(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}

// sortByFitness orders population and fitness ascending (best first),
// NaN entries last.
func sortByFitness(population [][]float64, fitness []float64) {
	idx := make([]int, len(population))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return betterFitness(fitness[idx[i]], fitness[idx[j]])
	})

	sortedPop := make([][]float64, len(population))
	sortedFit := make([]float64, len(fitness))
	for i, j := range idx {
		sortedPop[i] = population[j]
		sortedFit[i] = fitness[j]
	}
	copy(population, sortedPop)
	copy(fitness, sortedFit)
}

// bestTracker keeps the running best solution of a run and its convergence
// history. The history records the best-so-far Sharpe ratio once per
// completed generation, whether or not that generation improved it.
type bestTracker struct {
	weights []float64
	fitness float64
	history []float64
}

// newBestTracker seeds the tracker from an already evaluated population.
func newBestTracker(population [][]float64, fitness []float64, generations int) *bestTracker {
	t := &bestTracker{
		weights: make([]float64, len(population[0])),
		fitness: fitness[0],
		history: make([]float64, 0, generations),
	}
	copy(t.weights, population[0])
	for i := 1; i < len(population); i++ {
		t.observe(population[i], fitness[i])
	}
	return t
}

// observe updates the running best if fit improves on it.
func (t *bestTracker) observe(weights []float64, fit float64) {
	if betterFitness(fit, t.fitness) {
		t.fitness = fit
		copy(t.weights, weights)
	}
}

// record appends the current best Sharpe ratio to the history; called once
// after every completed generation.
func (t *bestTracker) record() {
	t.history = append(t.history, -t.fitness)
}

// result finalizes the run outcome, negating the internal minimization
// fitness back to the true Sharpe ratio.
func (t *bestTracker) result(engine string) Result {
	return Result{
		Engine:      engine,
		Weights:     t.weights,
		SharpeRatio: -t.fitness,
		History:     t.history,
	}
}
