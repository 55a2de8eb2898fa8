package movement

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/meshmove/fem"
	"github.com/notargets/meshmove/mesh"
	"github.com/notargets/meshmove/types"
	"github.com/notargets/meshmove/utils"
)

// DirichletBC prescribes the displacement of the vertices on some tagged boundary segments
type DirichletBC struct {
	Space fem.FunctionSpace
	Value [][]float64 // Per vertex displacement, nil for zero
	Tags  []int       // Nil for the whole boundary
}

func NewDirichletBC(space fem.FunctionSpace, value [][]float64, tags ...int) DirichletBC {
	return DirichletBC{Space: space, Value: value, Tags: tags}
}

// SpringMover treats the edges of a 2D mesh as a structure of stiff beams and moves the vertices by solving
// the associated linear elasticity problem. Forcing returns the live load field, which the update callback
// passed to Move may overwrite.
type SpringMover interface {
	Mover
	Move(time float64, update func(time float64) error, bcs ...DirichletBC) error
	CoordinateSpace() fem.FunctionSpace
	Forcing() [][]float64
	FacetAreas() []float64
	Tangents() [][]float64
	Angles() []float64
	StiffnessMatrix() *mat.Dense
	AssembleStiffnessMatrix(bcs ...DirichletBC) (*mat.Dense, error)
}

// NewSpringMover selects the spring analogy
func NewSpringMover(m *mesh.Mesh, method types.MoverMethod, opts Options) (mv SpringMover, err error) {
	switch method {
	case types.Lineal:
		var lineal *SpringLineal
		if lineal, err = NewSpringLineal(m, opts); err == nil {
			mv = lineal
		}
	case types.Torsional:
		var torsional *SpringTorsional
		if torsional, err = NewSpringTorsional(m, opts); err == nil {
			mv = torsional
		}
	default:
		err = configurationError("method %q not recognised", method.String())
	}
	return
}

type springBase struct {
	*PrimeMover
	coordSpace   fem.FunctionSpace
	forcing      [][]float64
	displacement []float64 // Interleaved, 2*vertex + component
}

func newSpringBase(m *mesh.Mesh, method types.MoverMethod, opts Options) (sb *springBase, err error) {
	if opts, err = opts.withDefaults(); err != nil {
		return
	}
	if m.Dim != 2 {
		err = unsupportedError("spring movers are only implemented in 2D, mesh is %dD", m.Dim)
		return
	}
	sb = &springBase{
		PrimeMover:   newPrimeMover(m, method, opts.Logger),
		coordSpace:   fem.CoordinateSpace(m),
		forcing:      make([][]float64, m.NumVertices),
		displacement: make([]float64, 2*m.NumVertices),
	}
	for i := range sb.forcing {
		sb.forcing[i] = make([]float64, m.Dim)
	}
	return
}

func (sb *springBase) CoordinateSpace() fem.FunctionSpace { return sb.coordSpace }
func (sb *springBase) Forcing() [][]float64               { return sb.forcing }

// FacetAreas are the edge lengths on the current coordinates, indexed like mesh.Facets
func (sb *springBase) FacetAreas() (areas []float64) {
	vals := fem.TraceProjection(sb.mesh, 1, func(f int) []float64 {
		l := sb.mesh.FacetMeasure(f)
		return []float64{l * l}
	})
	areas = make([]float64, len(vals))
	for f, v := range vals {
		areas[f] = v[0]
	}
	return
}

// Tangents are unit edge tangents, the outward normal of the first adjacent cell rotated anticlockwise
func (sb *springBase) Tangents() (tangents [][]float64) {
	return fem.TraceProjection(sb.mesh, 2, func(f int) []float64 {
		var (
			n = sb.mesh.FacetNormal(f)
			l = sb.mesh.FacetMeasure(f)
		)
		return []float64{-n[1] * l, n[0] * l}
	})
}

// Angles are the arguments of the edge tangents, in [0, pi]
func (sb *springBase) Angles() (angles []float64) {
	var (
		tangents = sb.Tangents()
	)
	vals := fem.TraceProjection(sb.mesh, 1, func(f int) []float64 {
		return []float64{tangents[f][0] * sb.mesh.FacetMeasure(f)}
	})
	angles = make([]float64, len(vals))
	for f, v := range vals {
		// Rounding can push the cosine just outside [-1, 1]
		angles[f] = math.Acos(utils.Clamp(v[0], -1, 1))
	}
	return
}

// StiffnessMatrix visits the mesh edges, anchoring both ends of every exterior edge with unit springs while
// interior edges contribute the lineal spring stiffness along their direction. Degree of freedom 2*v + k is component k of vertex v.
func (sb *springBase) StiffnessMatrix() (K *mat.Dense) {
	var (
		N      = sb.mesh.NumVertices
		angles = sb.Angles()
		areas  = sb.FacetAreas()
	)
	K = mat.NewDense(2*N, 2*N, nil)
	add := func(r, c int, v float64) { K.Set(r, c, K.At(r, c)+v) }
	for e, ek := range sb.mesh.Edges {
		var (
			verts = ek.Vertices()
			i, j  = verts[0], verts[1]
			f     = sb.mesh.EdgeFacets[e]
		)
		if sb.mesh.IsBoundaryFacet(f) {
			for _, dof := range []int{2 * i, 2*i + 1, 2 * j, 2*j + 1} {
				add(dof, dof, 1)
			}
			continue
		}
		var (
			c, s  = math.Cos(angles[f]), math.Sin(angles[f])
			l     = areas[f]
			block = [2][2]float64{{c * c / l, s * c / l}, {s * c / l, s * s / l}}
		)
		for a := 0; a < 2; a++ {
			for b := 0; b < 2; b++ {
				add(2*i+a, 2*i+b, block[a][b])
				add(2*j+a, 2*j+b, block[a][b])
				add(2*i+a, 2*j+b, -block[a][b])
				add(2*j+a, 2*i+b, -block[a][b])
			}
		}
	}
	return
}

// AssembleStiffnessMatrix replaces the rows of the vertices constrained by bcs with identity rows. With no
// conditions the whole boundary is constrained.
func (sb *springBase) AssembleStiffnessMatrix(bcs ...DirichletBC) (K *mat.Dense, err error) {
	var (
		verts []int
	)
	if verts, err = sb.constrainedVertices(bcs); err != nil {
		return
	}
	K = sb.StiffnessMatrix()
	_, nc := K.Dims()
	zero := make([]float64, nc)
	for _, v := range verts {
		for _, dof := range []int{2 * v, 2*v + 1} {
			K.SetRow(dof, zero)
			K.Set(dof, dof, 1)
		}
	}
	return
}

func (sb *springBase) defaultConditions(bcs []DirichletBC) []DirichletBC {
	if len(bcs) == 0 {
		return []DirichletBC{NewDirichletBC(sb.coordSpace, nil)}
	}
	return bcs
}

// validate checks that bc writes into the coordinate space on existing tags, and returns its facets
func (sb *springBase) validate(bc DirichletBC) (facets []int, err error) {
	if !bc.Space.Equal(sb.coordSpace) {
		err = configurationError("boundary conditions must have the coordinate space as their function space")
		return
	}
	known := sb.mesh.BoundaryTags()
	var invalid bool
	for _, tag := range bc.Tags {
		if !containsInt(known, tag) {
			invalid = true
		}
	}
	if invalid {
		err = configurationError("%v contains invalid boundary tags", bc.Tags)
		return
	}
	if bc.Value != nil && len(bc.Value) != sb.mesh.NumVertices {
		err = configurationError("boundary value has %d vertices, mesh has %d", len(bc.Value), sb.mesh.NumVertices)
		return
	}
	facets = sb.mesh.BoundaryFacets(bc.Tags...)
	if bc.Value != nil {
		for _, f := range facets {
			for _, v := range sb.mesh.Facets[f].Vertices {
				if len(bc.Value[v]) != sb.mesh.Dim {
					err = configurationError("boundary value at vertex %d has %d components, mesh is %dD",
						v, len(bc.Value[v]), sb.mesh.Dim)
					return
				}
			}
		}
	}
	return
}

func (sb *springBase) constrainedVertices(bcs []DirichletBC) (verts []int, err error) {
	seen := make(map[int]bool)
	for _, bc := range sb.defaultConditions(bcs) {
		var facets []int
		if facets, err = sb.validate(bc); err != nil {
			return
		}
		for _, f := range facets {
			for _, v := range sb.mesh.Facets[f].Vertices {
				if !seen[v] {
					seen[v] = true
					verts = append(verts, v)
				}
			}
		}
	}
	return
}

// applyDirichletConditions overwrites the displacement at the endpoints of every constrained edge
func (sb *springBase) applyDirichletConditions(bcs []DirichletBC) (err error) {
	for _, bc := range sb.defaultConditions(bcs) {
		var facets []int
		if facets, err = sb.validate(bc); err != nil {
			return
		}
		for _, f := range facets {
			for _, v := range sb.mesh.Facets[f].Vertices {
				for k := 0; k < 2; k++ {
					sb.displacement[2*v+k] = 0
					if bc.Value != nil {
						sb.displacement[2*v+k] = bc.Value[v][k]
					}
				}
			}
		}
	}
	return
}
