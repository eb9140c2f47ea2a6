// Package optimization searches for portfolio weight vectors that maximize
// the Sharpe ratio under a long-only, fully-invested constraint. Four
// population-based engines (bat, genetic, particle swarm, grey wolf) share
// the same objective, feasibility projection and convergence-tracking
// contract so their results are directly comparable.
package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Problem holds the statistics every engine optimizes against: the mean
// return vector and the sample covariance matrix of the asset returns.
// Both are derived once per run and never mutated afterwards; all engine
// instances share the same Problem read-only.
type Problem struct {
	mean *mat.VecDense
	cov  *mat.SymDense
	dim  int
}

// NewProblem derives mean returns and sample covariance from a T×N return
// matrix (T time steps, one column per asset). The matrix must be fully
// populated; gaps are forward-filled upstream by the data loader.
func NewProblem(returns *mat.Dense) (*Problem, error) {
	rows, cols := returns.Dims()
	if cols == 0 {
		return nil, fmt.Errorf("return matrix has no assets")
	}
	if rows < 2 {
		return nil, fmt.Errorf("return matrix needs at least 2 time steps, got %d", rows)
	}

	mean := mat.NewVecDense(cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, returns)
		mean.SetVec(j, stat.Mean(col, nil))
	}

	cov := mat.NewSymDense(cols, nil)
	stat.CovarianceMatrix(cov, returns, nil)

	return &Problem{mean: mean, cov: cov, dim: cols}, nil
}

// NewProblemFromStats builds a Problem directly from a mean vector and a
// covariance matrix, bypassing the return-matrix derivation.
func NewProblemFromStats(mean []float64, cov *mat.SymDense) (*Problem, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("mean vector is empty")
	}
	if n := cov.SymmetricDim(); n != len(mean) {
		return nil, fmt.Errorf("covariance dimension %d does not match mean length %d", n, len(mean))
	}
	return &Problem{
		mean: mat.NewVecDense(len(mean), mean),
		cov:  cov,
		dim:  len(mean),
	}, nil
}

// Dim returns the number of assets.
func (p *Problem) Dim() int {
	return p.dim
}

// MeanReturns returns a copy of the mean return vector.
func (p *Problem) MeanReturns() []float64 {
	out := make([]float64, p.dim)
	copy(out, p.mean.RawVector().Data)
	return out
}

// Covariance returns a copy of the covariance matrix.
func (p *Problem) Covariance() *mat.SymDense {
	out := mat.NewSymDense(p.dim, nil)
	out.CopySym(p.cov)
	return out
}
