package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.Vertices())
		assert.Equal(t, en, NewEdgeKey([2]int{0, 1}))

		en = NewEdgeKey([2]int{0, 10})
		assert.Equal(t, EdgeKey(10*(1<<32)), en)
		assert.Equal(t, [2]int{0, 10}, en.Vertices())

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
		assert.Equal(t, [2]int{1, 100}, en.Vertices())

		// Test maximum/minimum indices
		en = NewEdgeKey([2]int{1<<32 - 1, 1<<32 - 1})
		assert.Equal(t, EdgeKey(1<<64-1), en)
		assert.Equal(t, [2]int{1<<32 - 1, 1<<32 - 1}, en.Vertices())

		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // Mover method names
		labels := []string{"relaxation", "quasi_newton", "Lineal", " torsional "}
		methods := []MoverMethod{Relaxation, QuasiNewton, Lineal, Torsional}
		for i, label := range labels {
			mm, err := NewMoverMethod(label)
			assert.NoError(t, err)
			assert.Equal(t, methods[i], mm)
		}
		assert.Equal(t, "quasi_newton", QuasiNewton.String())
		assert.True(t, QuasiNewton.IsMongeAmpere())
		assert.False(t, Lineal.IsMongeAmpere())
		_, err := NewMoverMethod("method")
		assert.EqualError(t, err, `method "method" not recognised`)
	}
}
