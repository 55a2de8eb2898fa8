package solvers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshmove/utils"
)

// laplacian1D is the graph Laplacian of a path with n vertices, which has the constants as its null space
func laplacian1D(n int) utils.CSR {
	dok := utils.NewDOK(n, n)
	for i := 0; i < n-1; i++ {
		dok.AddAt(i, i, 1)
		dok.AddAt(i+1, i+1, 1)
		dok.AddAt(i, i+1, -1)
		dok.AddAt(i+1, i, -1)
	}
	dok.SetReadOnly("L")
	return dok.ToCSR()
}

func TestCG(t *testing.T) {
	{ // SPD system, diagonally shifted Laplacian
		n := 20
		dok := utils.NewDOK(n, n)
		L := laplacian1D(n)
		L.DoNonZero(func(i, j int, v float64) { dok.AddAt(i, j, v) })
		for i := 0; i < n; i++ {
			dok.AddAt(i, i, 1)
		}
		A := dok.ToCSR()
		xTrue := make([]float64, n)
		for i := range xTrue {
			xTrue[i] = float64(i*i) / 10.
		}
		b := A.MulVec(xTrue)
		x := make([]float64, n)
		s := NewCG(A, false)
		require.NotNil(t, s.Diagonal)
		iters, err := s.Solve(A, b, x)
		require.NoError(t, err)
		assert.LessOrEqual(t, iters, n)
		assert.InDeltaSlice(t, xTrue, x, 1.e-8)
	}
	{ // Singular Neumann problem, the mean of the guess is kept
		n := 15
		L := laplacian1D(n)
		xTrue := make([]float64, n)
		for i := range xTrue {
			xTrue[i] = float64(i) * float64(i%3)
		}
		utils.RemoveMean(xTrue)
		b := L.MulVec(xTrue)
		x := utils.ConstArray(n, 2)
		_, err := NewCG(L, true).Solve(L, b, x)
		require.NoError(t, err)
		assert.InDelta(t, 2., floats.Sum(x)/float64(n), 1.e-10)
		floats.AddConst(-2, x)
		assert.InDeltaSlice(t, xTrue, x, 1.e-8)
	}
	{ // Inconsistent sizes
		L := laplacian1D(4)
		_, err := NewCG(L, true).Solve(L, make([]float64, 3), make([]float64, 4))
		assert.ErrorIs(t, err, ErrDimension)
	}
	{ // Iteration cap
		n := 50
		L := laplacian1D(n)
		b := make([]float64, n)
		b[0], b[n-1] = 1, -1
		s := NewCG(L, true)
		s.Diagonal = nil
		s.MaxIter = 2
		_, err := s.Solve(L, b, make([]float64, n))
		assert.ErrorIs(t, err, ErrMaxIterations)
	}
}
