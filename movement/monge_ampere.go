package movement

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshmove/mesh"
	"github.com/notargets/meshmove/types"
	"github.com/notargets/meshmove/utils"
)

// MongeAmpereMover moves a mesh so that m(x) det(I + H(phi)) is constant, where x = xi + grad(phi) and xi are
// the reference coordinates. Move overwrites the mesh coordinates and returns the number of iterations.
type MongeAmpereMover interface {
	Mover
	Move() (int, error)
	SetMonitorFunction(MonitorFunc) error
	SetRtol(float64)
	Phi() []float64
	Sigma() [][]float64
}

// NewMongeAmpereMover selects the solution strategy for the Monge-Ampere equation
func NewMongeAmpereMover(m *mesh.Mesh, monitor MonitorFunc, method types.MoverMethod,
	opts Options) (mv MongeAmpereMover, err error) {
	switch method {
	case types.Relaxation:
		var relaxation *MongeAmpereRelaxation
		if relaxation, err = NewMongeAmpereRelaxation(m, monitor, opts); err == nil {
			mv = relaxation
		}
	case types.QuasiNewton:
		var quasiNewton *MongeAmpereQuasiNewton
		if quasiNewton, err = NewMongeAmpereQuasiNewton(m, monitor, opts); err == nil {
			mv = quasiNewton
		}
	default:
		err = configurationError("method %q not recognised", method.String())
	}
	return
}

// MongeAmpere moves m to equidistribute monitor and returns the potential and its Hessian
func MongeAmpere(m *mesh.Mesh, monitor MonitorFunc, method types.MoverMethod,
	opts Options) (phi []float64, sigma [][]float64, err error) {
	var (
		mv MongeAmpereMover
	)
	if mv, err = NewMongeAmpereMover(m, monitor, method, opts); err != nil {
		return
	}
	if _, err = mv.Move(); err != nil {
		return
	}
	phi, sigma = mv.Phi(), mv.Sigma()
	return
}

type mongeAmpereBase struct {
	*PrimeMover
	opts        Options
	monitorFunc MonitorFunc
	dim, tdim   int // Spatial dimension and number of tensor entries

	phi, phiOld     []float64
	sigma, sigmaOld [][]float64
	monitor         []float64
	theta           float64

	recovery *gradientRecovery
	hessian  *utils.CSR
}

func newMongeAmpereBase(m *mesh.Mesh, monitor MonitorFunc, method types.MoverMethod,
	opts Options) (ma *mongeAmpereBase, err error) {
	if monitor == nil {
		err = configurationError("please supply a monitor function")
		return
	}
	if opts, err = opts.withDefaults(); err != nil {
		return
	}
	var (
		N    = m.NumVertices
		dim  = m.Dim
		tdim = dim * dim
	)
	ma = &mongeAmpereBase{
		PrimeMover:  newPrimeMover(m, method, opts.Logger),
		opts:        opts,
		monitorFunc: monitor,
		dim:         dim,
		tdim:        tdim,
		phi:         make([]float64, N),
		phiOld:      make([]float64, N),
		sigma:       make([][]float64, N),
		sigmaOld:    make([][]float64, N),
	}
	for i := 0; i < N; i++ {
		ma.sigma[i] = make([]float64, tdim)
		ma.sigmaOld[i] = make([]float64, tdim)
	}
	if err = ma.applyInitialGuess(opts.PhiInit, opts.SigmaInit); err != nil {
		return
	}
	if ma.monitor, err = ma.evaluateMonitor(); err != nil {
		return
	}
	return
}

// applyInitialGuess replaces the zero potential, which leaves the mesh where it is, with a supplied one
func (ma *mongeAmpereBase) applyInitialGuess(phi []float64, sigma [][]float64) error {
	switch {
	case phi == nil && sigma == nil:
		return nil
	case phi == nil || sigma == nil:
		return configurationError("need to initialise both phi *and* sigma")
	case len(phi) != len(ma.phi):
		return configurationError("initial phi has %d values, mesh has %d vertices", len(phi), len(ma.phi))
	case len(sigma) != len(ma.sigma):
		return configurationError("initial sigma has %d values, mesh has %d vertices", len(sigma), len(ma.sigma))
	}
	for i, s := range sigma {
		if len(s) != ma.tdim {
			return configurationError("initial sigma at vertex %d has %d entries, expected %d", i, len(s), ma.tdim)
		}
		copy(ma.sigma[i], s)
		copy(ma.sigmaOld[i], s)
	}
	copy(ma.phi, phi)
	copy(ma.phiOld, phi)
	return nil
}

func (ma *mongeAmpereBase) SetMonitorFunction(monitor MonitorFunc) error {
	if monitor == nil {
		return configurationError("please supply a monitor function")
	}
	ma.monitorFunc = monitor
	return nil
}

func (ma *mongeAmpereBase) SetRtol(rtol float64) { ma.opts.Rtol = rtol }

func (ma *mongeAmpereBase) Phi() (phi []float64) {
	phi = make([]float64, len(ma.phi))
	copy(phi, ma.phi)
	return
}

func (ma *mongeAmpereBase) Sigma() [][]float64 { return utils.CopyArray2D(ma.sigma) }

func (ma *mongeAmpereBase) evaluateMonitor() (vals []float64, err error) {
	vals = ma.monitorFunc(ma.mesh)
	switch {
	case len(vals) != ma.mesh.NumVertices:
		err = configurationError("monitor function returned %d values, mesh has %d vertices",
			len(vals), ma.mesh.NumVertices)
	case !utils.IsFinite(vals):
		err = configurationError("monitor function returned non-finite values")
	}
	return
}

func (ma *mongeAmpereBase) gradientRecovery() (gr *gradientRecovery, err error) {
	if ma.recovery == nil {
		if ma.recovery, err = newGradientRecovery(ma.geom, ma.opts.FixBoundaryNodes, ma.logger); err != nil {
			return
		}
	}
	gr = ma.recovery
	return
}

// refresh recovers the gradient of the old potential, samples the monitor and the cell volumes on the moved
// mesh, and updates the normalisation. The mesh is left on the reference coordinates.
func (ma *mongeAmpereBase) refresh() (grad [][]float64, err error) {
	var (
		gr *gradientRecovery
	)
	if gr, err = ma.gradientRecovery(); err != nil {
		return
	}
	grad = gr.Recover(ma.phiOld)
	err = ma.withCoordinates(ma.displaced(grad), func() (err error) {
		if ma.monitor, err = ma.evaluateMonitor(); err != nil {
			return
		}
		ma.diagnostics.MinMax, ma.diagnostics.CoefficientOfVariation = ma.volumeStatistics()
		return
	})
	if err != nil {
		return
	}
	ma.theta = ma.normalisation()
	return
}

// normalisation is the domain average of m det(I + sigma_old)
func (ma *mongeAmpereBase) normalisation() (theta float64) {
	for i, M := range ma.geom.LumpedMass {
		theta += M * ma.monitor[i] * shiftedDeterminant(ma.sigmaOld[i], ma.dim)
	}
	return theta / ma.geom.TotalVolume
}

// equidistribution is m det(I + sigma_old) - theta at every vertex
func (ma *mongeAmpereBase) equidistribution() (r []float64) {
	r = make([]float64, ma.mesh.NumVertices)
	for i := range r {
		r[i] = ma.monitor[i]*shiftedDeterminant(ma.sigmaOld[i], ma.dim) - ma.theta
	}
	return
}

// relativeResidual is the L2 norm of the equidistribution residual relative to that of theta
func (ma *mongeAmpereBase) relativeResidual() float64 {
	var (
		num = floats.Norm(ma.geom.MassWeighted(ma.equidistribution()), 2)
		den = math.Abs(ma.theta) * floats.Norm(ma.geom.LumpedMass, 2)
	)
	return num / den
}

// updateDiagnostics completes the volume statistics gathered by refresh with the residual
func (ma *mongeAmpereBase) updateDiagnostics(iter int) (residual float64) {
	residual = ma.relativeResidual()
	ma.diagnostics.Residual = residual
	ma.logIteration(iter)
	return
}

// commit moves the mesh to xi + grad
func (ma *mongeAmpereBase) commit(grad [][]float64) {
	ma.mesh.SetCoordinates(ma.displaced(grad))
}

// hessianOperator maps the potential to the mass weighted recovered Hessian, integrating by parts with the
// boundary terms that keep the off diagonal entries consistent on axis aligned boundaries
func (ma *mongeAmpereBase) hessianOperator() (H utils.CSR, err error) {
	if ma.hessian != nil {
		H = *ma.hessian
		return
	}
	if ma.dim != 2 {
		err = unsupportedError("hessian recovery is only implemented in 2D, mesh is %dD", ma.dim)
		return
	}
	var (
		m    = ma.mesh
		d    = ma.dim
		dok  = utils.NewDOK(m.NumVertices*ma.tdim, m.NumVertices)
		geom = ma.geom
	)
	for c, verts := range m.Cells {
		G := geom.Gradients[c]
		for i, vi := range verts {
			for j, vj := range verts {
				for a := 0; a < d; a++ {
					for b := 0; b < d; b++ {
						dok.AddAt(vi*ma.tdim+a*d+b, vj, -geom.Volumes[c]*G[i][b]*G[j][a])
					}
				}
			}
		}
	}
	for _, f := range m.BoundaryFacets() {
		var (
			facet = m.Facets[f]
			G     = geom.Gradients[facet.Cells[0]]
			n     = geom.FacetNormals[f]
			w     = geom.FacetMeasures[f] / float64(len(facet.Vertices))
		)
		for _, vi := range facet.Vertices {
			for j, vj := range m.Cells[facet.Cells[0]] {
				dok.AddAt(vi*ma.tdim+0*d+1, vj, w*n[1]*G[j][0])
				dok.AddAt(vi*ma.tdim+1*d+0, vj, w*n[0]*G[j][1])
			}
		}
	}
	dok.SetReadOnly("Hessian")
	H = dok.ToCSR()
	ma.hessian = &H
	return
}

// recoverHessian sets sigma to the lumped projection of the Hessian of phi
func (ma *mongeAmpereBase) recoverHessian(phi []float64, sigma [][]float64) (err error) {
	var (
		H utils.CSR
	)
	if H, err = ma.hessianOperator(); err != nil {
		return
	}
	Hphi := H.MulVec(phi)
	for i, M := range ma.geom.LumpedMass {
		for k := 0; k < ma.tdim; k++ {
			sigma[i][k] = Hphi[i*ma.tdim+k] / M
		}
	}
	return
}
