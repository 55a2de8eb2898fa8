package fem

import (
	"fmt"

	"github.com/notargets/meshmove/mesh"
)

// TraceProjection solves the facet mass system of the lowest order trace space, given the load vector
// load(f) = integral over facet f of the projected quantity. Each trace basis function lives on one facet, so
// the mass matrix is diagonal and one Jacobi sweep is the exact solve. Interior facets are integrated from
// their first ("+") side only.
func TraceProjection(m *mesh.Mesh, components int, load func(f int) []float64) (vals [][]float64) {
	var (
		nf = len(m.Facets)
	)
	vals = make([][]float64, nf)
	for f := 0; f < nf; f++ {
		var (
			mass = m.FacetMeasure(f)
			b    = load(f)
		)
		if len(b) != components {
			panic(fmt.Errorf("facet load has %d components, expected %d", len(b), components))
		}
		vals[f] = make([]float64, components)
		for k := range b {
			vals[f][k] = b[k] / mass
		}
	}
	return
}
