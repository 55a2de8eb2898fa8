package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var factorial = [4]float64{1, 1, 2, 6}

// CellJacobian returns the affine map from the reference simplex, columns are x_k - x_0
func (m *Mesh) CellJacobian(c int) (J *mat.Dense) {
	var (
		verts = m.Cells[c]
		d     = m.Dim
		x0    = m.Coordinates[verts[0]]
	)
	J = mat.NewDense(d, d, nil)
	for k := 1; k <= d; k++ {
		xk := m.Coordinates[verts[k]]
		for i := 0; i < d; i++ {
			J.Set(i, k-1, xk[i]-x0[i])
		}
	}
	return
}

// SignedCellVolume is negative for cells whose vertex ordering is inverted
func (m *Mesh) SignedCellVolume(c int) float64 {
	return mat.Det(m.CellJacobian(c)) / factorial[m.Dim]
}

func (m *Mesh) CellVolume(c int) float64 {
	return math.Abs(m.SignedCellVolume(c))
}

// CellGradients returns the constant gradients of the barycentric (P1) basis functions, [Dim+1][Dim]
func (m *Mesh) CellGradients(c int) (grads [][]float64) {
	var (
		d    = m.Dim
		Jinv mat.Dense
	)
	if err := Jinv.Inverse(m.CellJacobian(c)); err != nil {
		panic(fmt.Errorf("cell %d is degenerate: %v", c, err))
	}
	grads = make([][]float64, d+1)
	grads[0] = make([]float64, d)
	for k := 1; k <= d; k++ {
		grads[k] = make([]float64, d)
		for i := 0; i < d; i++ {
			grads[k][i] = Jinv.At(k-1, i)
			grads[0][i] -= grads[k][i]
		}
	}
	return
}

func (m *Mesh) FacetCentroid(f int) (x []float64) {
	var (
		verts = m.Facets[f].Vertices
	)
	x = make([]float64, m.Dim)
	for _, v := range verts {
		floats.Add(x, m.Coordinates[v])
	}
	floats.Scale(1/float64(len(verts)), x)
	return
}

// FacetNormal is the unit normal pointing out of the first adjacent cell
func (m *Mesh) FacetNormal(f int) (n []float64) {
	var (
		facet = m.Facets[f]
		grads = m.CellGradients(facet.Cells[0])
	)
	n = make([]float64, m.Dim)
	copy(n, grads[facet.Opposite])
	floats.Scale(-1/floats.Norm(n, 2), n)
	return
}

// FacetMeasure is the length of an edge in 2D, the area of a face in 3D, and 1 for a point in 1D
func (m *Mesh) FacetMeasure(f int) float64 {
	var (
		facet = m.Facets[f]
		c     = facet.Cells[0]
		grads = m.CellGradients(c)
	)
	return float64(m.Dim) * m.CellVolume(c) * floats.Norm(grads[facet.Opposite], 2)
}

// BoundaryMeasure sums the measure of the exterior facets carrying tags, all of them if none are given
func (m *Mesh) BoundaryMeasure(tags ...int) (total float64) {
	for _, f := range m.BoundaryFacets(tags...) {
		total += m.FacetMeasure(f)
	}
	return
}

// UpdateGeometry refreshes quantities derived from the coordinates, call it after moving vertices
func (m *Mesh) UpdateGeometry() {
	if len(m.CellVolumes) != m.NumCells {
		m.CellVolumes = make([]float64, m.NumCells)
	}
	for c := range m.Cells {
		m.CellVolumes[c] = m.CellVolume(c)
	}
}

// TotalVolume is the measure of the domain
func (m *Mesh) TotalVolume() float64 {
	return floats.Sum(m.CellVolumes)
}

// IsTangled reports whether any cell has changed orientation relative to ref
func (m *Mesh) IsTangled(refSigns []float64) bool {
	for c := range m.Cells {
		if m.SignedCellVolume(c)*refSigns[c] <= 0 {
			return true
		}
	}
	return false
}

// OrientationSigns records the sign of every cell volume, for use with IsTangled
func (m *Mesh) OrientationSigns() (signs []float64) {
	signs = make([]float64, m.NumCells)
	for c := range m.Cells {
		signs[c] = math.Copysign(1, m.SignedCellVolume(c))
	}
	return
}
