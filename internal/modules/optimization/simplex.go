package optimization

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distmv"
)

// ProjectSimplex maps v onto the probability simplex in place: negative
// components are clamped to zero and the remainder is renormalized to sum
// to one. If every component was clamped (the sum is exactly zero), v
// becomes the uniform vector instead. This is the single feasibility gate
// every engine passes every candidate through after any perturbation.
func ProjectSimplex(v []float64) []float64 {
	sum := 0.0
	for i, x := range v {
		if x < 0 {
			v[i] = 0
			continue
		}
		sum += x
	}
	if sum == 0 {
		uniform := 1.0 / float64(len(v))
		for i := range v {
			v[i] = uniform
		}
		return v
	}
	for i := range v {
		v[i] /= sum
	}
	return v
}

// Sampler draws weight vectors uniformly from the probability simplex via
// a symmetric Dirichlet distribution with unit concentration. Every engine
// initializes its population through the same sampler so all engines start
// from comparable, already-feasible points.
type Sampler struct {
	dir *distmv.Dirichlet
	dim int
}

// NewSampler creates a simplex sampler for the given dimension. The random
// source must be independently seeded per engine instance (see Selector).
func NewSampler(dim int, src rand.Source) *Sampler {
	alpha := make([]float64, dim)
	for i := range alpha {
		alpha[i] = 1
	}
	return &Sampler{
		dir: distmv.NewDirichlet(alpha, src),
		dim: dim,
	}
}

// Sample draws one weight vector on the simplex. The draw's normalization
// can drift off the simplex by an ulp, so it is projected to restore the
// exact invariant (dimension one in particular must yield exactly [1]).
func (s *Sampler) Sample() []float64 {
	return ProjectSimplex(s.dir.Rand(make([]float64, s.dim)))
}

// SamplePopulation draws n independent weight vectors on the simplex.
func (s *Sampler) SamplePopulation(n int) [][]float64 {
	population := make([][]float64, n)
	for i := range population {
		population[i] = s.Sample()
	}
	return population
}
