package optimization

import (
	"math/rand/v2"
)

// Genetic algorithm tuning constants.
const (
	gaMutationRate  = 0.1 // probability that an offspring is mutated at all
	gaMutationSigma = 0.1 // per-dimension Gaussian noise applied when mutating
)

// GeneticEngine implements a generational genetic algorithm with truncation
// selection and elitism: each generation the better half of the population
// survives unchanged and breeds the other half via uniform crossover.
//
// Parent indices are drawn independently from the surviving half with
// replacement, so a member may be crossed with itself and produce an exact
// copy before mutation.
type GeneticEngine struct {
	problem *Problem
	rng     *rand.Rand
	sampler *Sampler
}

// NewGeneticEngine creates a genetic engine over the problem with its own
// random source.
func NewGeneticEngine(p *Problem, src rand.Source) *GeneticEngine {
	return &GeneticEngine{
		problem: p,
		rng:     rand.New(src),
		sampler: NewSampler(p.Dim(), src),
	}
}

// Name returns the engine identifier.
func (e *GeneticEngine) Name() string {
	return EngineGenetic
}

// Run executes the genetic search for the given population size and
// generation budget.
func (e *GeneticEngine) Run(popSize, generations int) Result {
	population := e.sampler.SamplePopulation(popSize)
	fitness := make([]float64, popSize)
	for i := range population {
		fitness[i] = e.problem.Fitness(population[i])
	}

	best := newBestTracker(population, fitness, generations)

	survivors := popSize / 2
	if survivors < 1 {
		survivors = 1
	}

	for t := 1; t <= generations; t++ {
		sortByFitness(population, fitness)

		// Breed offspring from the surviving half and replace the rest.
		for k := survivors; k < popSize; k++ {
			child := e.breed(population[:survivors])
			population[k] = child
			fitness[k] = e.problem.Fitness(child)
			best.observe(child, fitness[k])
		}
		best.record()
	}

	return best.result(EngineGenetic)
}

// breed picks two parents uniformly at random (with replacement) from the
// mating pool, applies uniform per-gene crossover and optional Gaussian
// mutation, and projects the child back onto the simplex.
func (e *GeneticEngine) breed(pool [][]float64) []float64 {
	parent1 := pool[e.rng.IntN(len(pool))]
	parent2 := pool[e.rng.IntN(len(pool))]

	child := make([]float64, len(parent1))
	for d := range child {
		if e.rng.Float64() < 0.5 {
			child[d] = parent1[d]
		} else {
			child[d] = parent2[d]
		}
	}

	if e.rng.Float64() < gaMutationRate {
		for d := range child {
			child[d] += e.rng.NormFloat64() * gaMutationSigma
		}
	}

	return ProjectSimplex(child)
}
