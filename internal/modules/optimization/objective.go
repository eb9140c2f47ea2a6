package optimization

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Fitness computes the minimization-oriented objective for a weight vector:
// the negated Sharpe ratio -(w·μ) / sqrt(w'Σw). Callers are responsible
// for feasibility; the weights are not required to lie on the simplex.
//
// The denominator is deliberately not guarded: a zero or numerically
// negative portfolio variance yields a non-finite value, which the engines'
// acceptance comparisons reject naturally (NaN compares false).
func Fitness(weights []float64, mean *mat.VecDense, cov *mat.SymDense) float64 {
	w := mat.NewVecDense(len(weights), weights)
	portfolioReturn := mat.Dot(w, mean)
	portfolioStdDev := math.Sqrt(mat.Inner(w, cov, w))
	return -portfolioReturn / portfolioStdDev
}

// Fitness evaluates the negated Sharpe ratio of weights against the
// problem's mean and covariance.
func (p *Problem) Fitness(weights []float64) float64 {
	return Fitness(weights, p.mean, p.cov)
}

// Sharpe returns the true (positive-oriented) Sharpe ratio of weights.
func (p *Problem) Sharpe(weights []float64) float64 {
	return -p.Fitness(weights)
}
