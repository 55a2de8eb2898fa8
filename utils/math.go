package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

// CopyArray2D returns a deep copy of a ragged 2D array
func CopyArray2D(a [][]float64) (b [][]float64) {
	b = make([][]float64, len(a))
	for i, row := range a {
		b[i] = make([]float64, len(row))
		copy(b[i], row)
	}
	return
}

// RemoveMean projects out the constant vector, the null space of pure Neumann operators
func RemoveMean(v []float64) {
	if len(v) == 0 {
		return
	}
	floats.AddConst(-floats.Sum(v)/float64(len(v)), v)
}

func IsFinite(v []float64) bool {
	for _, val := range v {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return false
		}
	}
	return true
}

// Clamp restricts x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
