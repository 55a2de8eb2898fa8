package fem

import (
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshmove/mesh"
	"github.com/notargets/meshmove/utils"
)

// Geometry caches the P1 quantities of a mesh at the coordinates it was built with. The movers build one on
// the computational mesh and keep it for their lifetime, so later coordinate changes do not reach it.
type Geometry struct {
	Mesh        *mesh.Mesh
	Dim         int
	Volumes     []float64     // Cell volumes
	Gradients   [][][]float64 // Barycentric gradients per cell, [ncells][Dim+1][Dim]
	LumpedMass  []float64     // Row sums of the P1 mass matrix
	TotalVolume float64

	FacetMeasures []float64
	FacetNormals  [][]float64
}

func NewGeometry(m *mesh.Mesh) (g *Geometry) {
	g = &Geometry{
		Mesh:          m,
		Dim:           m.Dim,
		Volumes:       make([]float64, m.NumCells),
		Gradients:     make([][][]float64, m.NumCells),
		LumpedMass:    make([]float64, m.NumVertices),
		FacetMeasures: make([]float64, len(m.Facets)),
		FacetNormals:  make([][]float64, len(m.Facets)),
	}
	share := 1 / float64(m.Dim+1)
	for c, verts := range m.Cells {
		g.Volumes[c] = m.CellVolume(c)
		g.Gradients[c] = m.CellGradients(c)
		for _, v := range verts {
			g.LumpedMass[v] += share * g.Volumes[c]
		}
	}
	g.TotalVolume = floats.Sum(g.Volumes)
	for f := range m.Facets {
		g.FacetMeasures[f] = m.FacetMeasure(f)
		g.FacetNormals[f] = m.FacetNormal(f)
	}
	return
}

// CellGradient is the constant gradient of the P1 field u on cell c
func (g *Geometry) CellGradient(c int, u []float64) (grad []float64) {
	grad = make([]float64, g.Dim)
	for k, v := range g.Mesh.Cells[c] {
		floats.AddScaled(grad, u[v], g.Gradients[c][k])
	}
	return
}

// Integrate uses the vertex quadrature implied by the lumped mass
func (g *Geometry) Integrate(u []float64) float64 {
	return floats.Dot(g.LumpedMass, u)
}

// MassWeighted returns M_L u
func (g *Geometry) MassWeighted(u []float64) (r []float64) {
	r = make([]float64, len(u))
	floats.MulTo(r, g.LumpedMass, u)
	return
}

// Laplacian assembles the P1 stiffness matrix, integral of grad(phi_i).grad(phi_j). Its null space is the
// constant vector.
func (g *Geometry) Laplacian() utils.CSR {
	var (
		N = g.Mesh.NumVertices
		A = utils.NewDOK(N, N)
	)
	for c, verts := range g.Mesh.Cells {
		G := g.Gradients[c]
		for i, vi := range verts {
			for j, vj := range verts {
				A.AddAt(vi, vj, g.Volumes[c]*floats.Dot(G[i], G[j]))
			}
		}
	}
	A.SetReadOnly("Laplacian")
	return A.ToCSR()
}

// ProjectGradient recovers a vertex valued gradient of the P1 field u by a lumped L2 projection of its
// cellwise constant gradient
func (g *Geometry) ProjectGradient(u []float64) (grad [][]float64) {
	var (
		share = 1 / float64(g.Dim+1)
	)
	grad = make([][]float64, g.Mesh.NumVertices)
	for i := range grad {
		grad[i] = make([]float64, g.Dim)
	}
	for c, verts := range g.Mesh.Cells {
		gc := g.CellGradient(c, u)
		w := share * g.Volumes[c]
		for _, v := range verts {
			floats.AddScaled(grad[v], w, gc)
		}
	}
	for i := range grad {
		floats.Scale(1/g.LumpedMass[i], grad[i])
	}
	return
}
