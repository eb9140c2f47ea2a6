package optimization

import (
	"math/rand/v2"
)

// psoInertia is the fixed inertia weight applied to the previous velocity.
// There are no separate cognitive/social acceleration constants beyond the
// uniform random scalars drawn each generation.
const psoInertia = 0.5

// ParticleSwarmEngine implements particle swarm optimization: each particle
// keeps its personal best position and the swarm shares one global best,
// both of which pull on the particle's velocity every generation.
type ParticleSwarmEngine struct {
	problem *Problem
	rng     *rand.Rand
	sampler *Sampler
}

// NewParticleSwarmEngine creates a PSO engine over the problem with its own
// random source.
func NewParticleSwarmEngine(p *Problem, src rand.Source) *ParticleSwarmEngine {
	return &ParticleSwarmEngine{
		problem: p,
		rng:     rand.New(src),
		sampler: NewSampler(p.Dim(), src),
	}
}

// Name returns the engine identifier.
func (e *ParticleSwarmEngine) Name() string {
	return EnginePSO
}

// Run executes the swarm search for the given population size and
// generation budget.
func (e *ParticleSwarmEngine) Run(popSize, generations int) Result {
	dim := e.problem.Dim()

	position := e.sampler.SamplePopulation(popSize)
	velocity := make([][]float64, popSize)
	fitness := make([]float64, popSize)
	personalBest := make([][]float64, popSize)
	personalBestFit := make([]float64, popSize)
	for i := range position {
		velocity[i] = make([]float64, dim)
		fitness[i] = e.problem.Fitness(position[i])
		personalBest[i] = make([]float64, dim)
		copy(personalBest[i], position[i])
		personalBestFit[i] = fitness[i]
	}

	globalBest := make([]float64, dim)
	globalBestFit := personalBestFit[0]
	copy(globalBest, personalBest[0])
	for i := 1; i < popSize; i++ {
		if betterFitness(personalBestFit[i], globalBestFit) {
			globalBestFit = personalBestFit[i]
			copy(globalBest, personalBest[i])
		}
	}

	best := newBestTracker(position, fitness, generations)

	for t := 1; t <= generations; t++ {
		for i := range position {
			r1 := e.rng.Float64()
			r2 := e.rng.Float64()
			for d := 0; d < dim; d++ {
				velocity[i][d] = psoInertia*velocity[i][d] +
					r1*(personalBest[i][d]-position[i][d]) +
					r2*(globalBest[d]-position[i][d])
				position[i][d] += velocity[i][d]
			}
			ProjectSimplex(position[i])

			fit := e.problem.Fitness(position[i])
			fitness[i] = fit
			best.observe(position[i], fit)

			if fit < personalBestFit[i] {
				personalBestFit[i] = fit
				copy(personalBest[i], position[i])
				if fit < globalBestFit {
					globalBestFit = fit
					copy(globalBest, position[i])
				}
			}
		}
		best.record()
	}

	return best.result(EnginePSO)
}
