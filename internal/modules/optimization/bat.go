package optimization

import (
	"math"
	"math/rand/v2"
)

// Bat algorithm tuning constants.
const (
	batFrequencyMax     = 5.0  // echolocation frequency drawn uniformly in [0, batFrequencyMax)
	batLocalWalkSigma   = 0.05 // per-dimension Gaussian step of the local random walk
	batLoudnessDecay    = 0.95 // loudness multiplier applied on every accepted move
	batPulseRateGamma   = 0.1  // growth rate of the pulse-rate schedule
	batInitialLoudness  = 1.0
	batInitialPulseRate = 0.1
)

// BatEngine implements the bat algorithm: members fly with a velocity
// attracted toward the global best at a random echolocation frequency, and
// occasionally abandon flight for a small random walk around the best.
// Loudness gates acceptance and decays with every accepted move, biasing
// the search toward exploitation over time.
type BatEngine struct {
	problem *Problem
	rng     *rand.Rand
	sampler *Sampler
}

// NewBatEngine creates a bat engine over the problem with its own random
// source.
func NewBatEngine(p *Problem, src rand.Source) *BatEngine {
	return &BatEngine{
		problem: p,
		rng:     rand.New(src),
		sampler: NewSampler(p.Dim(), src),
	}
}

// Name returns the engine identifier.
func (e *BatEngine) Name() string {
	return EngineBat
}

// Run executes the bat search for the given population size and generation
// budget.
func (e *BatEngine) Run(popSize, generations int) Result {
	dim := e.problem.Dim()

	position := e.sampler.SamplePopulation(popSize)
	velocity := make([][]float64, popSize)
	fitness := make([]float64, popSize)
	loudness := make([]float64, popSize)
	pulseRate := make([]float64, popSize)
	for i := range position {
		velocity[i] = make([]float64, dim)
		fitness[i] = e.problem.Fitness(position[i])
		loudness[i] = batInitialLoudness
		pulseRate[i] = batInitialPulseRate
	}

	best := newBestTracker(position, fitness, generations)
	candidate := make([]float64, dim)

	for t := 1; t <= generations; t++ {
		for i := range position {
			frequency := e.rng.Float64() * batFrequencyMax
			for d := 0; d < dim; d++ {
				velocity[i][d] += (position[i][d] - best.weights[d]) * frequency
				candidate[d] = position[i][d] + velocity[i][d]
			}

			// With probability (1 - r) switch from velocity-driven flight
			// to a local random walk around the global best.
			if e.rng.Float64() > pulseRate[i] {
				for d := 0; d < dim; d++ {
					candidate[d] = best.weights[d] + e.rng.NormFloat64()*batLocalWalkSigma
				}
			}
			ProjectSimplex(candidate)

			fit := e.problem.Fitness(candidate)
			if fit <= fitness[i] && e.rng.Float64() < loudness[i] {
				copy(position[i], candidate)
				fitness[i] = fit
				loudness[i] *= batLoudnessDecay
				pulseRate[i] *= 1 - math.Exp(-batPulseRateGamma*float64(t))
				if fit <= best.fitness {
					best.fitness = fit
					copy(best.weights, candidate)
				}
			}
		}
		best.record()
	}

	return best.result(EngineBat)
}
