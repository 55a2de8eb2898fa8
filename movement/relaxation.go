package movement

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshmove/mesh"
	"github.com/notargets/meshmove/solvers"
	"github.com/notargets/meshmove/types"
	"github.com/notargets/meshmove/utils"
)

// MongeAmpereRelaxation integrates the parabolised equation
//
//	-d/dtau Laplacian(phi) = m det(I + H(phi)) - theta
//
// in pseudo-time with forward Euler until the residual falls below Rtol.
type MongeAmpereRelaxation struct {
	*mongeAmpereBase
	laplacian *utils.CSR
	cg        *solvers.CG
}

func NewMongeAmpereRelaxation(m *mesh.Mesh, monitor MonitorFunc, opts Options) (mv *MongeAmpereRelaxation, err error) {
	var (
		base *mongeAmpereBase
	)
	if base, err = newMongeAmpereBase(m, monitor, types.Relaxation, opts); err != nil {
		return
	}
	mv = &MongeAmpereRelaxation{mongeAmpereBase: base}
	return
}

// pseudoTimestep solves L phi = L phi_old + dtau M r for phi, warm started from phi_old
func (mv *MongeAmpereRelaxation) pseudoTimestep() (err error) {
	if mv.laplacian == nil {
		L := mv.geom.Laplacian()
		mv.laplacian = &L
		mv.cg = solvers.NewCG(L, true)
	}
	var (
		rhs = mv.laplacian.MulVec(mv.phiOld)
		r   = mv.geom.MassWeighted(mv.equidistribution())
	)
	floats.AddScaled(rhs, mv.opts.PseudoTimestep, r)
	copy(mv.phi, mv.phiOld)
	_, err = mv.cg.Solve(*mv.laplacian, rhs, mv.phi)
	return
}

func (mv *MongeAmpereRelaxation) Move() (i int, err error) {
	var (
		grad        [][]float64
		initialNorm float64
		converged   bool
	)
	for i = 0; i < mv.opts.MaxIter; i++ {
		if grad, err = mv.refresh(); err != nil {
			return
		}
		residual := mv.updateDiagnostics(i)
		if i == 0 {
			initialNorm = residual
		}
		switch {
		case math.IsNaN(residual):
			err = &ConvergenceError{Reason: Diverged, Iterations: i + 1}
		case residual < mv.opts.Rtol:
			converged = true
		case residual > mv.opts.Dtol*initialNorm:
			err = &ConvergenceError{Reason: Diverged, Iterations: i + 1}
		case i == mv.opts.MaxIter-1:
			err = &ConvergenceError{Reason: FailedToConverge, Iterations: i + 1}
		}
		if converged || err != nil {
			break
		}
		if err = mv.pseudoTimestep(); err != nil {
			return
		}
		if err = mv.recoverHessian(mv.phi, mv.sigma); err != nil {
			return
		}
		copy(mv.phiOld, mv.phi)
		for k := range mv.sigma {
			copy(mv.sigmaOld[k], mv.sigma[k])
		}
	}
	mv.commit(grad)
	if converged {
		mv.logger.Infof("Converged in %d iterations.", i+1)
	}
	return
}
