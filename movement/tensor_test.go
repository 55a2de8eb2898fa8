package movement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestShiftedDeterminant(t *testing.T) {
	for _, s := range [][]float64{
		{0.5},
		{0.1, 0.2, 0.3, -0.4},
		{0.1, 0.2, 0.3, -0.4, 0.5, 0.6, 0.7, 0.8, -0.9},
	} {
		d := map[int]int{1: 1, 4: 2, 9: 3}[len(s)]
		a := mat.NewDense(d, d, shiftedIdentity(s, d))
		assert.InDelta(t, mat.Det(a), shiftedDeterminant(s, d), 1.e-12)

		// The cofactor matrix is det(A) A^-T
		var inv mat.Dense
		assert.NoError(t, inv.Inverse(a))
		det := mat.Det(a)
		cof := shiftedCofactor(s, d)
		for i := 0; i < d; i++ {
			for j := 0; j < d; j++ {
				assert.InDelta(t, det*inv.At(j, i), cof[i*d+j], 1.e-12)
			}
		}
	}
	assert.Panics(t, func() { shiftedDeterminant([]float64{1, 2}, 2) })
}
