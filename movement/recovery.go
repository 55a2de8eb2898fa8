package movement

import (
	"math"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshmove/fem"
)

// slidingSegment is a straight boundary segment that is not aligned with an axis. Vertices on it may slide
// tangentially, except where it meets another segment.
type slidingSegment struct {
	tag      int
	facets   []int
	tangents map[int][]float64 // Unit tangent at each vertex of the segment
	pinned   map[int]bool
}

// gradientRecovery projects the gradient of a P1 potential onto vertices and imposes the boundary conditions
// that keep the moved mesh inside the reference domain. It is built once, on the reference geometry.
type gradientRecovery struct {
	geom    *fem.Geometry
	fixed   []int   // Vertices where the whole gradient vanishes
	aligned [][]int // Per vertex, the Cartesian components that vanish
	sliding []slidingSegment
}

func newGradientRecovery(geom *fem.Geometry, fixBoundary bool, logger *log.Logger) (gr *gradientRecovery, err error) {
	var (
		m    = geom.Mesh
		dim  = geom.Dim
		tags = m.BoundaryTags()
	)
	gr = &gradientRecovery{
		geom:    geom,
		aligned: make([][]int, m.NumVertices),
	}
	if fixBoundary {
		if len(tags) != 0 {
			gr.fixed = m.BoundaryVertices(tags...)
		}
		return
	}
	vertexTags := m.VertexTags()
	for _, tag := range tags {
		var (
			facets  = m.BoundaryFacets(tag)
			nAbs    = make([]float64, dim)
			measure float64
		)
		for _, f := range facets {
			for j := 0; j < dim; j++ {
				nAbs[j] += geom.FacetMeasures[f] * math.Abs(geom.FacetNormals[f][j])
			}
			measure += geom.FacetMeasures[f]
		}
		var nonzero []int
		for j := 0; j < dim; j++ {
			if nAbs[j] > 1.e-10*measure {
				nonzero = append(nonzero, j)
			}
		}
		switch {
		case len(nonzero) == 0:
			err = configurationError("invalid normal vector %v on boundary segment %d", nAbs, tag)
			return
		case len(nonzero) == 1:
			// Axis aligned, only the normal component is constrained
			j := nonzero[0]
			for _, v := range m.BoundaryVertices(tag) {
				if !containsInt(gr.aligned[v], j) {
					gr.aligned[v] = append(gr.aligned[v], j)
				}
			}
			continue
		case dim != 2:
			err = unsupportedError("boundary segment %d is not axis aligned, this is only supported in 2D", tag)
			return
		}
		seg := slidingSegment{
			tag:      tag,
			facets:   facets,
			tangents: make(map[int][]float64),
			pinned:   make(map[int]bool),
		}
		normals := make(map[int][]float64)
		for _, f := range facets {
			for _, v := range m.Facets[f].Vertices {
				if normals[v] == nil {
					normals[v] = make([]float64, dim)
				}
				floats.AddScaled(normals[v], geom.FacetMeasures[f], geom.FacetNormals[f])
			}
		}
		for v, n := range normals {
			floats.Scale(1/floats.Norm(n, 2), n)
			seg.tangents[v] = []float64{-n[1], n[0]}
			// Vertices shared with another segment stay put
			if len(vertexTags[v]) > 1 {
				seg.pinned[v] = true
			}
		}
		gr.sliding = append(gr.sliding, seg)
	}
	if len(gr.sliding) != 0 {
		logger.Warn("boundary segments that are not axis aligned must each be a uniquely tagged straight line")
	}
	return
}

// Recover returns the vertex gradient of phi with the boundary conditions applied
func (gr *gradientRecovery) Recover(phi []float64) (grad [][]float64) {
	grad = gr.geom.ProjectGradient(phi)
	for _, seg := range gr.sliding {
		var (
			weight = make(map[int]float64)
			along  = make(map[int]float64)
		)
		for _, f := range seg.facets {
			var (
				facet = gr.geom.Mesh.Facets[f]
				gc    = gr.geom.CellGradient(facet.Cells[0], phi)
				w     = gr.geom.FacetMeasures[f]
			)
			for _, v := range facet.Vertices {
				along[v] += w * floats.Dot(seg.tangents[v], gc)
				weight[v] += w
			}
		}
		for v, s := range seg.tangents {
			if seg.pinned[v] {
				floats.Scale(0, grad[v])
				continue
			}
			copy(grad[v], s)
			floats.Scale(along[v]/weight[v], grad[v])
		}
	}
	for v, comps := range gr.aligned {
		for _, j := range comps {
			grad[v][j] = 0
		}
	}
	for _, v := range gr.fixed {
		floats.Scale(0, grad[v])
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
