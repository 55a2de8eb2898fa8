package movement

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/meshmove/fem"
	"github.com/notargets/meshmove/mesh"
	"github.com/notargets/meshmove/types"
	"github.com/notargets/meshmove/utils"
)

// MonitorFunc returns one positive value per vertex of m, evaluated on its current coordinates
type MonitorFunc func(m *mesh.Mesh) []float64

// Options configures a mover. Zero values select the defaults, negative values are rejected.
type Options struct {
	PseudoTimestep   float64 // Relaxation only, default 0.1
	MaxIter          int     // Default 1000
	Rtol             float64 // Default 1e-8
	Dtol             float64 // Divergence ratio on the initial residual, default 2
	FixBoundaryNodes bool
	PhiInit          []float64   // Initial potential, per vertex
	SigmaInit        [][]float64 // Initial Hessian, per vertex, flattened d x d
	Logger           *log.Logger
}

func (o Options) withDefaults() (Options, error) {
	switch {
	case o.PseudoTimestep < 0:
		return o, configurationError("pseudo-timestep must be positive, have %g", o.PseudoTimestep)
	case o.MaxIter < 0:
		return o, configurationError("maxiter must be positive, have %d", o.MaxIter)
	case o.Rtol < 0:
		return o, configurationError("rtol must be positive, have %g", o.Rtol)
	case o.Dtol < 0:
		return o, configurationError("dtol must be positive, have %g", o.Dtol)
	}
	if o.PseudoTimestep == 0 {
		o.PseudoTimestep = 0.1
	}
	if o.MaxIter == 0 {
		o.MaxIter = 1000
	}
	if o.Rtol == 0 {
		o.Rtol = 1.e-8
	}
	if o.Dtol == 0 {
		o.Dtol = 2.
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o, nil
}

// Diagnostics are refreshed on every iteration of a Monge-Ampere solve
type Diagnostics struct {
	MinMax                 float64 // Smallest over largest ratio of current to original cell volume
	Residual               float64 // Relative L2 norm of the equidistribution residual
	CoefficientOfVariation float64 // Standard deviation over mean of the volume ratios
}

func (d Diagnostics) String() string {
	return fmt.Sprintf("Min/Max %10.4e   Residual %10.4e   Variation (σ/μ) %10.4e",
		d.MinMax, d.Residual, d.CoefficientOfVariation)
}

// Mover is what every mesh movement method shares
type Mover interface {
	Method() types.MoverMethod
	Mesh() *mesh.Mesh
	Diagnostics() Diagnostics
}

// PrimeMover owns the reference coordinates of the mesh being moved. Discrete operators are built once on
// the reference mesh and reused by every iteration.
type PrimeMover struct {
	mesh        *mesh.Mesh
	xi          [][]float64
	method      types.MoverMethod
	logger      *log.Logger
	geom        *fem.Geometry
	diagnostics Diagnostics
}

func newPrimeMover(m *mesh.Mesh, method types.MoverMethod, logger *log.Logger) (pm *PrimeMover) {
	pm = &PrimeMover{
		mesh:   m,
		xi:     m.CopyCoordinates(),
		method: method,
		logger: logger,
		geom:   fem.NewGeometry(m),
	}
	return
}

func (pm *PrimeMover) Method() types.MoverMethod { return pm.method }
func (pm *PrimeMover) Mesh() *mesh.Mesh          { return pm.mesh }
func (pm *PrimeMover) Diagnostics() Diagnostics  { return pm.diagnostics }

// ReferenceCoordinates returns a copy of the coordinates captured at construction
func (pm *PrimeMover) ReferenceCoordinates() [][]float64 {
	return utils.CopyArray2D(pm.xi)
}

// withCoordinates runs fn with the mesh at x, then puts the mesh back on the reference coordinates however
// fn returns
func (pm *PrimeMover) withCoordinates(x [][]float64, fn func() error) error {
	defer pm.mesh.SetCoordinates(pm.xi)
	pm.mesh.SetCoordinates(x)
	return fn()
}

// volumeStatistics compares the current cell volumes of the mesh to those of the reference mesh
func (pm *PrimeMover) volumeStatistics() (minmax, cv float64) {
	var (
		ratio = make([]float64, pm.mesh.NumCells)
	)
	floats.DivTo(ratio, pm.mesh.CellVolumes, pm.geom.Volumes)
	minmax = floats.Min(ratio) / floats.Max(ratio)
	mean, std := stat.MeanStdDev(ratio, nil)
	if mean != 0 {
		cv = std / mean
	}
	return
}

func (pm *PrimeMover) logIteration(i int) {
	pm.logger.Debugf("%4d   %s", i, pm.diagnostics)
}

// displaced returns xi + g
func (pm *PrimeMover) displaced(g [][]float64) (x [][]float64) {
	x = pm.ReferenceCoordinates()
	for i := range x {
		floats.Add(x[i], g[i])
	}
	return
}

var (
	_ Mover = (*PrimeMover)(nil)
)

// ParseMethod resolves a method name such as "relaxation" or "lineal"
func ParseMethod(label string) (method types.MoverMethod, err error) {
	if method, err = types.NewMoverMethod(label); err != nil {
		err = fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return
}
