package mesh

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notargets/meshmove/types"
)

// Facet is a codimension one entity of a simplex mesh: a point in 1D, an edge in 2D, a triangle in 3D
type Facet struct {
	Vertices []int // Vertex indices, ordered as in the first adjacent cell
	Cells    []int // Adjacent cells, one for a boundary facet and two for an interior facet
	Opposite int   // Local index of the vertex of Cells[0] that is not on this facet
	Tag      int   // Boundary tag, 0 for interior and untagged facets
}

// BoundaryTagger assigns a tag to a boundary facet from its vertices and centroid, 0 leaves it untagged
type BoundaryTagger func(verts []int, centroid []float64) int

// Mesh is a simplicial mesh of fixed topology. Only Coordinates is ever mutated.
type Mesh struct {
	Dim         int
	Coordinates [][]float64 // Vertex coordinates [nvertices][Dim]
	Cells       [][]int     // Cell to vertex connectivity [ncells][Dim+1]

	Facets     []Facet
	CellFacets [][]int        // Cell to facet connectivity, CellFacets[c][k] is opposite local vertex k
	FacetMap   map[string]int // Map from sorted vertex string to facet ID

	Edges      []types.EdgeKey
	EdgeMap    map[types.EdgeKey]int
	EdgeFacets []int // Facet lying on each edge, -1 unless the mesh is 2D

	CellVolumes []float64 // Refreshed by UpdateGeometry

	NumVertices int
	NumCells    int
}

// NewMesh builds connectivity for a simplex mesh and tags its boundary facets
func NewMesh(dim int, coords [][]float64, cells [][]int, tagger BoundaryTagger) (m *Mesh) {
	if dim < 1 || dim > 3 {
		panic(fmt.Errorf("unsupported mesh dimension %d", dim))
	}
	for i, x := range coords {
		if len(x) != dim {
			panic(fmt.Errorf("vertex %d has %d coordinates, expected %d", i, len(x), dim))
		}
	}
	for c, verts := range cells {
		if len(verts) != dim+1 {
			panic(fmt.Errorf("cell %d has %d vertices, expected %d", c, len(verts), dim+1))
		}
		for _, v := range verts {
			if v < 0 || v >= len(coords) {
				panic(fmt.Errorf("cell %d references vertex %d, have %d vertices", c, v, len(coords)))
			}
		}
	}
	m = &Mesh{
		Dim:         dim,
		Coordinates: coords,
		Cells:       cells,
		FacetMap:    make(map[string]int),
		EdgeMap:     make(map[types.EdgeKey]int),
		NumVertices: len(coords),
		NumCells:    len(cells),
	}
	m.BuildConnectivity()
	m.UpdateGeometry()
	m.tagBoundary(tagger)
	return
}

func facetKey(verts []int) string {
	sorted := make([]int, len(verts))
	copy(sorted, verts)
	sort.Ints(sorted)
	return fmt.Sprintf("%v", sorted)
}

// BuildConnectivity builds facet and edge connectivity from the cell list
func (m *Mesh) BuildConnectivity() {
	m.CellFacets = make([][]int, m.NumCells)
	for c, verts := range m.Cells {
		m.CellFacets[c] = make([]int, len(verts))
		for k := range verts {
			// Facet opposite local vertex k
			fverts := make([]int, 0, len(verts)-1)
			for kk, v := range verts {
				if kk != k {
					fverts = append(fverts, v)
				}
			}
			key := facetKey(fverts)
			if facetID, exists := m.FacetMap[key]; exists {
				m.Facets[facetID].Cells = append(m.Facets[facetID].Cells, c)
				m.CellFacets[c][k] = facetID
			} else {
				facetID = len(m.Facets)
				m.Facets = append(m.Facets, Facet{
					Vertices: fverts,
					Cells:    []int{c},
					Opposite: k,
				})
				m.FacetMap[key] = facetID
				m.CellFacets[c][k] = facetID
			}
		}
		for i := 0; i < len(verts); i++ {
			for j := i + 1; j < len(verts); j++ {
				ek := types.NewEdgeKey([2]int{verts[i], verts[j]})
				if _, exists := m.EdgeMap[ek]; !exists {
					m.EdgeMap[ek] = len(m.Edges)
					m.Edges = append(m.Edges, ek)
				}
			}
		}
	}
	m.EdgeFacets = make([]int, len(m.Edges))
	for e := range m.EdgeFacets {
		m.EdgeFacets[e] = -1
	}
	if m.Dim == 2 {
		for f, facet := range m.Facets {
			m.EdgeFacets[m.EdgeMap[types.NewEdgeKey([2]int{facet.Vertices[0], facet.Vertices[1]})]] = f
		}
	}
	for f, facet := range m.Facets {
		if len(facet.Cells) > 2 {
			panic(fmt.Errorf("facet %d %v is shared by %d cells, mesh is not a manifold", f, facet.Vertices, len(facet.Cells)))
		}
	}
}

func (m *Mesh) tagBoundary(tagger BoundaryTagger) {
	if tagger == nil {
		return
	}
	for f := range m.Facets {
		if m.IsBoundaryFacet(f) {
			m.Facets[f].Tag = tagger(m.Facets[f].Vertices, m.FacetCentroid(f))
		}
	}
}

func (m *Mesh) IsBoundaryFacet(f int) bool {
	return len(m.Facets[f].Cells) == 1
}

// BoundaryTags returns the sorted set of tags present on the exterior facets
func (m *Mesh) BoundaryTags() (tags []int) {
	seen := make(map[int]bool)
	for f, facet := range m.Facets {
		if m.IsBoundaryFacet(f) && facet.Tag != 0 && !seen[facet.Tag] {
			seen[facet.Tag] = true
			tags = append(tags, facet.Tag)
		}
	}
	sort.Ints(tags)
	return
}

// BoundaryFacets returns the exterior facets carrying any of tags, or every exterior facet if no tags are given
func (m *Mesh) BoundaryFacets(tags ...int) (facets []int) {
	var (
		want = make(map[int]bool, len(tags))
	)
	for _, tag := range tags {
		want[tag] = true
	}
	for f, facet := range m.Facets {
		if !m.IsBoundaryFacet(f) {
			continue
		}
		if len(tags) == 0 || want[facet.Tag] {
			facets = append(facets, f)
		}
	}
	return
}

// BoundaryVertices returns the sorted vertices of BoundaryFacets(tags...)
func (m *Mesh) BoundaryVertices(tags ...int) (verts []int) {
	seen := make(map[int]bool)
	for _, f := range m.BoundaryFacets(tags...) {
		for _, v := range m.Facets[f].Vertices {
			if !seen[v] {
				seen[v] = true
				verts = append(verts, v)
			}
		}
	}
	sort.Ints(verts)
	return
}

// VertexTags returns, for every vertex, the sorted tags of the tagged exterior facets touching it
func (m *Mesh) VertexTags() (vt [][]int) {
	vt = make([][]int, m.NumVertices)
	for _, f := range m.BoundaryFacets() {
		tag := m.Facets[f].Tag
		if tag == 0 {
			continue
		}
		for _, v := range m.Facets[f].Vertices {
			if !containsInt(vt[v], tag) {
				vt[v] = append(vt[v], tag)
			}
		}
	}
	for _, tags := range vt {
		sort.Ints(tags)
	}
	return
}

func containsInt(s []int, val int) bool {
	for _, v := range s {
		if v == val {
			return true
		}
	}
	return false
}

// CopyCoordinates returns a deep copy of the vertex coordinates
func (m *Mesh) CopyCoordinates() (x [][]float64) {
	x = make([][]float64, m.NumVertices)
	for i, xi := range m.Coordinates {
		x[i] = make([]float64, m.Dim)
		copy(x[i], xi)
	}
	return
}

// SetCoordinates overwrites the vertex coordinates in place and refreshes the cached geometry
func (m *Mesh) SetCoordinates(x [][]float64) {
	if len(x) != m.NumVertices {
		panic(fmt.Errorf("coordinate array has %d vertices, mesh has %d", len(x), m.NumVertices))
	}
	for i := range x {
		copy(m.Coordinates[i], x[i])
	}
	m.UpdateGeometry()
}

func (m *Mesh) PrintStatistics() string {
	var (
		sb strings.Builder
	)
	fmt.Fprintf(&sb, "Mesh Statistics:\n")
	fmt.Fprintf(&sb, "  Dimension: %d\n", m.Dim)
	fmt.Fprintf(&sb, "  Vertices: %d\n", m.NumVertices)
	fmt.Fprintf(&sb, "  Cells: %d\n", m.NumCells)
	fmt.Fprintf(&sb, "  Facets: %d (%d exterior)\n", len(m.Facets), len(m.BoundaryFacets()))
	fmt.Fprintf(&sb, "  Edges: %d\n", len(m.Edges))
	fmt.Fprintf(&sb, "  Boundary tags: %v\n", m.BoundaryTags())
	return sb.String()
}
