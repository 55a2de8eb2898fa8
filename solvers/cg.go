package solvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshmove/utils"
)

// LinearOperator is the only thing CG needs from a matrix, utils.CSR satisfies it
type LinearOperator interface {
	Dims() (r, c int)
	MulVecTo(y, x []float64)
}

// CG is a Jacobi preconditioned conjugate gradient solver for symmetric positive (semi-)definite systems.
// With RemoveConstant set, the constant vector is treated as the null space of the operator and projected
// out of the right hand side and of every residual, so singular pure Neumann problems converge and the mean
// of the initial guess is preserved.
type CG struct {
	Rtol           float64
	Atol           float64
	MaxIter        int
	RemoveConstant bool
	Diagonal       []float64 // Jacobi preconditioner, nil for none
}

func NewCG(A LinearOperator, removeConstant bool) (s *CG) {
	s = &CG{
		Rtol:           1.e-12,
		Atol:           1.e-50,
		RemoveConstant: removeConstant,
	}
	if d, ok := A.(interface{ Diagonal() []float64 }); ok {
		s.Diagonal = d.Diagonal()
	}
	return
}

var _ LinearOperator = utils.CSR{}

// Solve overwrites x, which is used as the initial guess, and returns the number of iterations taken
func (s *CG) Solve(A LinearOperator, b, x []float64) (iters int, err error) {
	var (
		n, nc = A.Dims()
		r     = make([]float64, n)
		z     = make([]float64, n)
		p     = make([]float64, n)
		Ap    = make([]float64, n)
		rhs   = make([]float64, n)
	)
	if n != nc || len(b) != n || len(x) != n {
		err = fmt.Errorf("%w: operator is %dx%d, rhs %d, solution %d", ErrDimension, n, nc, len(b), len(x))
		return
	}
	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = 10 * n
	}
	copy(rhs, b)
	if s.RemoveConstant {
		utils.RemoveMean(rhs)
	}
	A.MulVecTo(Ap, x)
	floats.SubTo(r, rhs, Ap)
	if s.RemoveConstant {
		utils.RemoveMean(r)
	}
	bnorm := floats.Norm(rhs, 2)
	if bnorm == 0 {
		bnorm = floats.Norm(r, 2)
	}
	tol := math.Max(s.Rtol*bnorm, s.Atol)
	if floats.Norm(r, 2) <= tol {
		return
	}
	s.precondition(z, r)
	copy(p, z)
	rz := floats.Dot(r, z)
	for iters = 1; iters <= maxIter; iters++ {
		A.MulVecTo(Ap, p)
		pAp := floats.Dot(p, Ap)
		if pAp <= 0 || math.IsNaN(pAp) {
			err = fmt.Errorf("%w: operator is not positive definite on the search direction (p.Ap = %g)",
				ErrNotFinite, pAp)
			return
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, Ap)
		if s.RemoveConstant {
			utils.RemoveMean(r)
		}
		if floats.Norm(r, 2) <= tol {
			return
		}
		s.precondition(z, r)
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew
		floats.AddScaledTo(p, z, beta, p)
	}
	iters = maxIter
	err = fmt.Errorf("%w: conjugate gradient residual %g > %g after %d iterations",
		ErrMaxIterations, floats.Norm(r, 2), tol, maxIter)
	return
}

func (s *CG) precondition(z, r []float64) {
	if s.Diagonal == nil {
		copy(z, r)
	} else {
		for i := range z {
			if s.Diagonal[i] != 0 {
				z[i] = r[i] / s.Diagonal[i]
			} else {
				z[i] = r[i]
			}
		}
	}
	if s.RemoveConstant {
		utils.RemoveMean(z)
	}
}
