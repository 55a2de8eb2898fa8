package movement

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/meshmove/mesh"
	"github.com/notargets/meshmove/solvers"
	"github.com/notargets/meshmove/types"
	"github.com/notargets/meshmove/utils"
)

// MongeAmpereQuasiNewton solves for phi and sigma together, as one nonlinear system
//
//	M sigma - H phi = 0
//	-M (m det(I + sigma) - theta) = 0
//
// The monitor and theta are refreshed before every residual and Jacobian evaluation, and are frozen inside
// the Jacobian, which makes the method quasi-Newton.
type MongeAmpereQuasiNewton struct {
	*mongeAmpereBase
	snes *solvers.Newton
}

func NewMongeAmpereQuasiNewton(m *mesh.Mesh, monitor MonitorFunc, opts Options) (mv *MongeAmpereQuasiNewton, err error) {
	var (
		base *mongeAmpereBase
	)
	if base, err = newMongeAmpereBase(m, monitor, types.QuasiNewton, opts); err != nil {
		return
	}
	mv = &MongeAmpereQuasiNewton{mongeAmpereBase: base}
	return
}

// pack lays out the unknowns as [phi, sigma_0, sigma_1, ...]
func (mv *MongeAmpereQuasiNewton) pack() (x []float64) {
	N := mv.mesh.NumVertices
	x = make([]float64, N*(1+mv.tdim))
	copy(x, mv.phiOld)
	for i, s := range mv.sigmaOld {
		copy(x[N+i*mv.tdim:], s)
	}
	return
}

func (mv *MongeAmpereQuasiNewton) unpack(x []float64, phi []float64, sigma [][]float64) {
	N := mv.mesh.NumVertices
	copy(phi, x[:N])
	for i := range sigma {
		copy(sigma[i], x[N+i*mv.tdim:N+(i+1)*mv.tdim])
	}
}

// updateMonitor makes x the old state and refreshes everything derived from it
func (mv *MongeAmpereQuasiNewton) updateMonitor(x []float64) (err error) {
	mv.unpack(x, mv.phiOld, mv.sigmaOld)
	_, err = mv.refresh()
	return
}

func (mv *MongeAmpereQuasiNewton) Residual(x, f []float64) (err error) {
	var (
		N    = mv.mesh.NumVertices
		H    utils.CSR
		geom = mv.geom
	)
	if H, err = mv.hessianOperator(); err != nil {
		return
	}
	Hphi := H.MulVec(x[:N])
	for i, M := range geom.LumpedMass {
		s := x[N+i*mv.tdim : N+(i+1)*mv.tdim]
		f[i] = -M * (mv.monitor[i]*shiftedDeterminant(s, mv.dim) - mv.theta)
		for k := 0; k < mv.tdim; k++ {
			f[N+i*mv.tdim+k] = M*s[k] - Hphi[i*mv.tdim+k]
		}
	}
	return
}

// Step eliminates sigma from the frozen Jacobian system, solves the resulting elliptic equation for the
// potential update with its constant mode removed, then back substitutes
func (mv *MongeAmpereQuasiNewton) Step(x, f, dx []float64) (err error) {
	var (
		N    = mv.mesh.NumVertices
		tdim = mv.tdim
		H    utils.CSR
		M    = mv.geom.LumpedMass
		A    = mat.NewDense(N, N, nil)
		b    = make([]float64, N)
		cof  = make([][]float64, N)
	)
	if H, err = mv.hessianOperator(); err != nil {
		return
	}
	for i := 0; i < N; i++ {
		cof[i] = shiftedCofactor(x[N+i*tdim:N+(i+1)*tdim], mv.dim)
		floats.Scale(mv.monitor[i], cof[i])
		b[i] = f[i] + floats.Dot(cof[i], f[N+i*tdim:N+(i+1)*tdim])
	}
	H.DoNonZero(func(row, j int, v float64) {
		i, k := row/tdim, row%tdim
		A.Set(i, j, A.At(i, j)+cof[i][k]*v)
	})
	var dphi []float64
	if dphi, err = solvers.SolveWithNullSpace(A, b, [][]float64{utils.ConstArray(N, 1)}); err != nil {
		return
	}
	copy(dx, dphi)
	Hdphi := H.MulVec(dphi)
	for i := 0; i < N; i++ {
		for k := 0; k < tdim; k++ {
			row := i*tdim + k
			dx[N+row] = (Hdphi[row] - f[N+row]) / M[i]
		}
	}
	return
}

// equidistributor is created at the first move and reused by later ones
func (mv *MongeAmpereQuasiNewton) equidistributor() *solvers.Newton {
	if mv.snes == nil {
		N := mv.mesh.NumVertices
		constant := make([]float64, N*(1+mv.tdim))
		for i := 0; i < N; i++ {
			constant[i] = 1 / math.Sqrt(float64(N))
		}
		mv.snes = solvers.NewNewton(mv.opts.Rtol, mv.opts.MaxIter)
		mv.snes.NullSpace = [][]float64{constant}
		mv.snes.PreFunction = mv.updateMonitor
		mv.snes.PreJacobian = mv.updateMonitor
		// Progress only, convergence is decided by the nonlinear solver
		mv.snes.Monitor = func(iter int, x []float64, fnorm float64) {
			if err := mv.updateMonitor(x); err != nil {
				mv.logger.Warn("unable to compute diagnostics", "iteration", iter, "err", err)
				return
			}
			mv.updateDiagnostics(iter)
		}
	}
	mv.snes.Atol = mv.opts.Rtol
	mv.snes.MaxIter = mv.opts.MaxIter
	return mv.snes
}

func (mv *MongeAmpereQuasiNewton) Move() (iters int, err error) {
	var (
		grad [][]float64
	)
	if grad, err = mv.refresh(); err != nil {
		return
	}
	residual := mv.updateDiagnostics(0)
	switch {
	case math.IsNaN(residual):
		err = &ConvergenceError{Reason: Diverged, Iterations: 0}
		return
	case residual < mv.opts.Rtol:
		mv.commit(grad)
		mv.logger.Infof("Converged in %d iterations.", 0)
		return
	}
	x := mv.pack()
	if iters, err = mv.equidistributor().Solve(mv, x); err != nil {
		switch {
		case errors.Is(err, solvers.ErrNotFinite):
			err = &ConvergenceError{Reason: Diverged, Iterations: iters}
		case errors.Is(err, solvers.ErrMaxIterations), errors.Is(err, solvers.ErrLineSearch),
			errors.Is(err, solvers.ErrSingular):
			err = &ConvergenceError{Reason: FailedToConverge, Iterations: iters}
		}
		return
	}
	mv.unpack(x, mv.phi, mv.sigma)
	mv.unpack(x, mv.phiOld, mv.sigmaOld)
	mv.commit(mv.recovery.Recover(mv.phiOld))
	mv.logger.Infof("Converged in %d iterations.", iters)
	return
}

var (
	_ solvers.NonlinearProblem = (*MongeAmpereQuasiNewton)(nil)
	_ MongeAmpereMover         = (*MongeAmpereQuasiNewton)(nil)
	_ MongeAmpereMover         = (*MongeAmpereRelaxation)(nil)
)
