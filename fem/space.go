package fem

import (
	"github.com/notargets/meshmove/mesh"
)

type Family string

const (
	CG         Family = "CG"
	DG         Family = "DG"
	HDivTrace  Family = "HDiv Trace"
	VertexOnly Family = "Vertex"
)

// FunctionSpace identifies where a discrete field lives. Only its identity matters to the movers, which use
// it to check that boundary data was built for the space they write into.
type FunctionSpace struct {
	Mesh       *mesh.Mesh
	Family     Family
	Degree     int
	Components int
}

func ScalarSpace(m *mesh.Mesh) FunctionSpace {
	return FunctionSpace{Mesh: m, Family: CG, Degree: 1, Components: 1}
}

func VectorSpace(m *mesh.Mesh) FunctionSpace {
	return FunctionSpace{Mesh: m, Family: CG, Degree: 1, Components: m.Dim}
}

func TensorSpace(m *mesh.Mesh) FunctionSpace {
	return FunctionSpace{Mesh: m, Family: CG, Degree: 1, Components: m.Dim * m.Dim}
}

// CoordinateSpace is the space of the mesh coordinate field, vector valued P1
func CoordinateSpace(m *mesh.Mesh) FunctionSpace {
	return VectorSpace(m)
}

func (fs FunctionSpace) Equal(o FunctionSpace) bool {
	return fs.Mesh == o.Mesh && fs.Family == o.Family && fs.Degree == o.Degree && fs.Components == o.Components
}

// NumNodes is the number of nodal locations, each carrying Components values
func (fs FunctionSpace) NumNodes() int {
	switch fs.Family {
	case CG:
		if fs.Degree == 1 {
			return fs.Mesh.NumVertices
		}
	case DG:
		if fs.Degree == 0 {
			return fs.Mesh.NumCells
		}
		return fs.Mesh.NumCells * (fs.Mesh.Dim + 1)
	case HDivTrace:
		return len(fs.Mesh.Facets)
	case VertexOnly:
		return fs.Mesh.NumVertices
	}
	panic("unsupported function space")
}

// Interpolate evaluates f at every vertex of the current geometry
func Interpolate(m *mesh.Mesh, f func(x []float64) float64) (vals []float64) {
	vals = make([]float64, m.NumVertices)
	for i, x := range m.Coordinates {
		vals[i] = f(x)
	}
	return
}
