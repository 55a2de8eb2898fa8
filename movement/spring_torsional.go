package movement

import (
	"github.com/notargets/meshmove/mesh"
)

// SpringTorsional would add rotational stiffness at the vertices to the lineal springs, which stops cells
// from collapsing under large displacements
type SpringTorsional struct {
	*SpringLineal
}

func NewSpringTorsional(m *mesh.Mesh, opts Options) (mv *SpringTorsional, err error) {
	err = unsupportedError("torsional springs not yet implemented")
	return
}
