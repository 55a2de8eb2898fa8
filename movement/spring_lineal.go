package movement

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshmove/mesh"
	"github.com/notargets/meshmove/solvers"
	"github.com/notargets/meshmove/types"
	"github.com/notargets/meshmove/utils"
)

// SpringLineal is the lineal spring analogy of Farhat, Degand, Koobus and Lesoinne (1998), where each
// edge only resists stretching along its own direction
type SpringLineal struct {
	*springBase
}

func NewSpringLineal(m *mesh.Mesh, opts Options) (mv *SpringLineal, err error) {
	var (
		sb *springBase
	)
	if sb, err = newSpringBase(m, types.Lineal, opts); err != nil {
		return
	}
	mv = &SpringLineal{springBase: sb}
	return
}

// Move refreshes the forcing at time, solves for the displacement, imposes bcs on it and moves the mesh.
// With no conditions the whole boundary stays put.
func (mv *SpringLineal) Move(time float64, update func(time float64) error, bcs ...DirichletBC) (err error) {
	for _, bc := range mv.defaultConditions(bcs) {
		if _, err = mv.validate(bc); err != nil {
			return
		}
	}
	if update != nil {
		if err = update(time); err != nil {
			return
		}
	}
	var (
		K   = mv.StiffnessMatrix()
		rhs = make([]float64, 0, 2*mv.mesh.NumVertices)
		d   []float64
	)
	mv.logger.Debug("Assembled dense stiffness matrix", append([]interface{}{"dofs", 2 * mv.mesh.NumVertices},
		utils.MemUsage()...)...)
	for _, f := range mv.forcing {
		rhs = append(rhs, f...)
	}
	if d, err = solvers.SolveDense(K, rhs); err != nil {
		return
	}
	copy(mv.displacement, d)
	if err = mv.applyDirichletConditions(bcs); err != nil {
		return
	}
	for v, x := range mv.mesh.Coordinates {
		floats.Add(x, mv.displacement[2*v:2*v+2])
	}
	mv.mesh.UpdateGeometry()
	mv.logger.Debugf("t = %g   max displacement %10.4e", time, floats.Norm(mv.displacement, math.Inf(1)))
	return
}

var (
	_ SpringMover = (*SpringLineal)(nil)
)
