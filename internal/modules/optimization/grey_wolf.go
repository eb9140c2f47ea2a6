package optimization

import (
	"math"
	"math/rand/v2"
	"sort"
)

// gwoLeaderCount is the number of pack leaders (alpha, beta, delta) that
// every wolf is attracted toward.
const gwoLeaderCount = 3

// GreyWolfEngine implements the grey wolf optimizer: the three best-ranked
// wolves lead the pack, and every wolf moves to the average of three
// leader-relative candidate positions. The control coefficient a decays
// linearly from 2 to 0 over the generation budget, shifting the pack from
// exploration to encirclement.
type GreyWolfEngine struct {
	problem *Problem
	rng     *rand.Rand
	sampler *Sampler
}

// NewGreyWolfEngine creates a grey wolf engine over the problem with its
// own random source.
func NewGreyWolfEngine(p *Problem, src rand.Source) *GreyWolfEngine {
	return &GreyWolfEngine{
		problem: p,
		rng:     rand.New(src),
		sampler: NewSampler(p.Dim(), src),
	}
}

// Name returns the engine identifier.
func (e *GreyWolfEngine) Name() string {
	return EngineGreyWolf
}

// Run executes the pack search for the given population size and
// generation budget.
func (e *GreyWolfEngine) Run(popSize, generations int) Result {
	dim := e.problem.Dim()

	pack := e.sampler.SamplePopulation(popSize)
	fitness := make([]float64, popSize)
	for i := range pack {
		fitness[i] = e.problem.Fitness(pack[i])
	}

	best := newBestTracker(pack, fitness, generations)

	leaders := make([][]float64, gwoLeaderCount)
	for l := range leaders {
		leaders[l] = make([]float64, dim)
	}
	next := make([][]float64, popSize)
	for i := range next {
		next[i] = make([]float64, dim)
	}

	for t := 0; t < generations; t++ {
		a := 2 - 2*float64(t)/float64(generations)

		e.selectLeaders(pack, fitness, leaders)

		// Synchronous update: every wolf moves relative to the same three
		// leaders; fitness and leadership are re-evaluated only after the
		// whole pack has moved.
		for i := range pack {
			for d := 0; d < dim; d++ {
				next[i][d] = 0
			}
			for _, leader := range leaders {
				for d := 0; d < dim; d++ {
					coeffA := a * (2*e.rng.Float64() - 1)
					coeffC := 2 * e.rng.Float64()
					distance := math.Abs(coeffC*leader[d] - pack[i][d])
					next[i][d] += (leader[d] - coeffA*distance) / gwoLeaderCount
				}
			}
			ProjectSimplex(next[i])
		}

		for i := range pack {
			copy(pack[i], next[i])
			fitness[i] = e.problem.Fitness(pack[i])
			best.observe(pack[i], fitness[i])
		}
		best.record()
	}

	return best.result(EngineGreyWolf)
}

// selectLeaders copies the three best wolves of the pack into leaders.
// Packs smaller than three reuse their last wolf as the missing leaders.
func (e *GreyWolfEngine) selectLeaders(pack [][]float64, fitness []float64, leaders [][]float64) {
	idx := make([]int, len(pack))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return betterFitness(fitness[idx[i]], fitness[idx[j]])
	})
	for l := range leaders {
		at := l
		if at >= len(idx) {
			at = len(idx) - 1
		}
		copy(leaders[l], pack[idx[at]])
	}
}
