package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMath(t *testing.T) {
	v := []float64{1, 2, 3, 6}
	RemoveMean(v)
	assert.InDeltaSlice(t, []float64{-2, -1, 0, 3}, v, 1.e-15)
	assert.True(t, IsFinite(v))
	assert.False(t, IsFinite([]float64{1, math.NaN()}))
	assert.False(t, IsFinite([]float64{math.Inf(-1)}))
	assert.Equal(t, []float64{7, 7}, ConstArray(2, 7))
	assert.Equal(t, 1., Clamp(1.0000001, -1, 1))
	assert.Equal(t, -1., Clamp(-3, -1, 1))

	a := [][]float64{{1}, {2, 3}}
	b := CopyArray2D(a)
	b[1][0] = 5
	assert.Equal(t, 2., a[1][0])

	kv := MemUsage()
	assert.Len(t, kv, 8)
	assert.Equal(t, "alloc", kv[0])
}
