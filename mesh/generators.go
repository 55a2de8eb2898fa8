package mesh

import (
	"math"

	"github.com/notargets/meshmove/utils"
)

// UnitIntervalMesh tags x=0 with 1 and x=1 with 2
func UnitIntervalMesh(n int) *Mesh {
	if n < 1 {
		panic("need at least one cell")
	}
	coords := make([][]float64, n+1)
	for i := range coords {
		coords[i] = []float64{float64(i) / float64(n)}
	}
	cells := make([][]int, n)
	for i := range cells {
		cells[i] = []int{i, i + 1}
	}
	return NewMesh(1, coords, cells, boxTagger(1))
}

// UnitSquareMesh splits each of nx*ny squares into two triangles along the diagonal from the lower left
// corner. Tags: 1 for x=0, 2 for x=1, 3 for y=0, 4 for y=1
func UnitSquareMesh(nx, ny int) *Mesh {
	if nx < 1 || ny < 1 {
		panic("need at least one cell in each direction")
	}
	var (
		coords = make([][]float64, 0, (nx+1)*(ny+1))
		cells  = make([][]int, 0, 2*nx*ny)
		vid    = func(i, j int) int { return j*(nx+1) + i }
	)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			coords = append(coords, []float64{float64(i) / float64(nx), float64(j) / float64(ny)})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := vid(i, j), vid(i+1, j), vid(i, j+1), vid(i+1, j+1)
			cells = append(cells, []int{a, b, d}, []int{a, d, c})
		}
	}
	return NewMesh(2, coords, cells, boxTagger(2))
}

// UnitCubeMesh splits each of nx*ny*nz cubes into six tetrahedra sharing the main diagonal, which keeps the
// subdivision conforming between neighbours. Tags: 1,2 for x=0,1, 3,4 for y=0,1, 5,6 for z=0,1
func UnitCubeMesh(nx, ny, nz int) *Mesh {
	if nx < 1 || ny < 1 || nz < 1 {
		panic("need at least one cell in each direction")
	}
	var (
		coords = make([][]float64, 0, (nx+1)*(ny+1)*(nz+1))
		cells  = make([][]int, 0, 6*nx*ny*nz)
		vid    = func(i, j, k int) int { return (k*(ny+1)+j)*(nx+1) + i }
		perms  = [6][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	)
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				coords = append(coords, []float64{
					float64(i) / float64(nx), float64(j) / float64(ny), float64(k) / float64(nz)})
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				for _, p := range perms {
					idx := [3]int{i, j, k}
					tet := []int{vid(idx[0], idx[1], idx[2])}
					for _, axis := range p {
						idx[axis]++
						tet = append(tet, vid(idx[0], idx[1], idx[2]))
					}
					cells = append(cells, tet)
				}
			}
		}
	}
	return NewMesh(3, coords, cells, boxTagger(3))
}

// UnitTriangleMesh is the single cell with vertices (0,0), (1,0), (0,1). The facet opposite vertex k has
// tag k+1, so the hypotenuse is 1, x=0 is 2 and y=0 is 3
func UnitTriangleMesh() *Mesh {
	coords := [][]float64{{0, 0}, {1, 0}, {0, 1}}
	cells := [][]int{{0, 1, 2}}
	return NewMesh(2, coords, cells, func(verts []int, centroid []float64) int {
		for k := 0; k < 3; k++ {
			if verts[0] != k && verts[1] != k {
				return k + 1
			}
		}
		return 0
	})
}

// boxTagger tags the faces of the unit box: 2*axis+1 on the lower face, 2*axis+2 on the upper face
func boxTagger(dim int) BoundaryTagger {
	return func(verts []int, centroid []float64) int {
		for axis := 0; axis < dim; axis++ {
			switch {
			case math.Abs(centroid[axis]) < utils.NODETOL:
				return 2*axis + 1
			case math.Abs(centroid[axis]-1) < utils.NODETOL:
				return 2*axis + 2
			}
		}
		return 0
	}
}
