package fem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshmove/mesh"
)

func TestGeometry(t *testing.T) {
	for _, m := range []*mesh.Mesh{mesh.UnitIntervalMesh(5), mesh.UnitSquareMesh(4, 3), mesh.UnitCubeMesh(2, 2, 2)} {
		g := NewGeometry(m)
		assert.InDelta(t, 1., g.TotalVolume, 1.e-13)
		assert.InDelta(t, 1., floats.Sum(g.LumpedMass), 1.e-13)

		// Constants are in the null space of the Laplacian, linears are reproduced by the gradient projection
		L := g.Laplacian()
		ones := make([]float64, m.NumVertices)
		floats.AddConst(1, ones)
		assert.InDelta(t, 0., floats.Norm(L.MulVec(ones), math.Inf(1)), 1.e-12)

		u := Interpolate(m, func(x []float64) float64 {
			var s float64
			for i, xi := range x {
				s += float64(i+1) * xi
			}
			return s
		})
		grad := g.ProjectGradient(u)
		for _, gv := range grad {
			for i := range gv {
				assert.InDelta(t, float64(i+1), gv[i], 1.e-12)
			}
		}
		assert.InDelta(t, g.Integrate(u), floats.Dot(g.LumpedMass, u), 1.e-15)

		// Symmetric positive semi-definite: u.L.u = |grad u|^2 integrated
		Lu := L.MulVec(u)
		var want float64
		for i := 0; i < m.Dim; i++ {
			want += float64((i + 1) * (i + 1))
		}
		assert.InDelta(t, want, floats.Dot(u, Lu), 1.e-11)
	}
}

func TestFunctionSpace(t *testing.T) {
	m := mesh.UnitSquareMesh(2, 2)
	other := mesh.UnitSquareMesh(2, 2)
	assert.True(t, CoordinateSpace(m).Equal(VectorSpace(m)))
	assert.False(t, CoordinateSpace(m).Equal(VectorSpace(other)))
	assert.False(t, CoordinateSpace(m).Equal(ScalarSpace(m)))
	p2 := FunctionSpace{Mesh: m, Family: CG, Degree: 2, Components: 2}
	assert.False(t, CoordinateSpace(m).Equal(p2))
	assert.Equal(t, 4, TensorSpace(m).Components)
	assert.Equal(t, 9, ScalarSpace(m).NumNodes())
	assert.Equal(t, 16, FunctionSpace{Mesh: m, Family: HDivTrace}.NumNodes())
}

func TestTraceProjection(t *testing.T) {
	m := mesh.UnitTriangleMesh()
	lengths := TraceProjection(m, 1, func(f int) []float64 {
		A := m.FacetMeasure(f)
		return []float64{A * A}
	})
	var got []float64
	for _, l := range lengths {
		got = append(got, l[0])
	}
	assert.ElementsMatch(t, roundAll([]float64{1, 1, math.Sqrt2}), roundAll(got))
	assert.Panics(t, func() { TraceProjection(m, 2, func(f int) []float64 { return []float64{1} }) })
}

func roundAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, val := range v {
		out[i] = math.Round(val*1e12) / 1e12
	}
	return out
}
