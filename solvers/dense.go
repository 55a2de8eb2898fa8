package solvers

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SolveDense solves the square system A.x = b by LU factorisation
func SolveDense(A mat.Matrix, b []float64) (x []float64, err error) {
	var (
		nr, nc = A.Dims()
		xv     mat.VecDense
	)
	if nr != nc || len(b) != nr {
		err = fmt.Errorf("%w: matrix is %dx%d, rhs has length %d", ErrDimension, nr, nc, len(b))
		return
	}
	if err = checkSolve(xv.SolveVec(A, mat.NewVecDense(len(b), b))); err != nil {
		return
	}
	x = make([]float64, nr)
	copy(x, xv.RawVector().Data)
	return
}

// SolveLeastSquares returns the minimum residual solution of an overdetermined system with full column rank
func SolveLeastSquares(A mat.Matrix, b []float64) (x []float64, err error) {
	var (
		nr, nc = A.Dims()
		xv     mat.VecDense
	)
	if nr < nc || len(b) != nr {
		err = fmt.Errorf("%w: matrix is %dx%d, rhs has length %d", ErrDimension, nr, nc, len(b))
		return
	}
	if err = checkSolve(xv.SolveVec(A, mat.NewVecDense(len(b), b))); err != nil {
		return
	}
	x = make([]float64, nc)
	copy(x, xv.RawVector().Data)
	return
}

// SolveWithNullSpace solves a square system whose null space is spanned by the columns of Z by appending the
// rows Z^T x = 0 and solving the bordered system in the least squares sense
func SolveWithNullSpace(A *mat.Dense, b []float64, Z [][]float64) (x []float64, err error) {
	var (
		n, _ = A.Dims()
		k    = len(Z)
		B    = mat.NewDense(n+k, n, nil)
		rhs  = make([]float64, n+k)
	)
	B.Slice(0, n, 0, n).(*mat.Dense).Copy(A)
	for i, z := range Z {
		if len(z) != n {
			err = fmt.Errorf("%w: null space vector has length %d, expected %d", ErrDimension, len(z), n)
			return
		}
		B.SetRow(n+i, z)
	}
	copy(rhs, b)
	return SolveLeastSquares(B, rhs)
}

// checkSolve accepts ill conditioned factorisations, gonum still returns the solution alongside the
// condition estimate, and rejects singular ones
func checkSolve(err error) error {
	var (
		cond mat.Condition
	)
	if err == nil {
		return nil
	}
	if errors.As(err, &cond) && !math.IsInf(float64(cond), 1) && !math.IsNaN(float64(cond)) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrSingular, err)
}
