package movement

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshmove/mesh"
	"github.com/notargets/meshmove/types"
)

var (
	methods = []types.MoverMethod{types.Relaxation, types.QuasiNewton}
	quiet   = log.NewWithOptions(io.Discard, log.Options{})
)

func unitMesh(dim, n int) *mesh.Mesh {
	switch dim {
	case 1:
		return mesh.UnitIntervalMesh(n)
	case 2:
		return mesh.UnitSquareMesh(n, n)
	default:
		return mesh.UnitCubeMesh(n, n, n)
	}
}

var (
	constMonitor = ConstantMonitor
	ringMonitor  = RingMonitor(0.25, 2, 10)
)

func maxDistance(a, b [][]float64) (dist float64) {
	for i := range a {
		for k := range a[i] {
			dist = math.Max(dist, math.Abs(a[i][k]-b[i][k]))
		}
	}
	return
}

func TestMongeAmpereConfiguration(t *testing.T) {
	m := unitMesh(2, 4)
	{ // No monitor
		_, err := NewMongeAmpereMover(m, nil, types.Relaxation, Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.Contains(t, err.Error(), "please supply a monitor function")
	}
	{ // Unknown methods
		_, err := ParseMethod("method")
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.Contains(t, err.Error(), `method "method" not recognised`)
		_, err = NewMongeAmpereMover(m, constMonitor, types.Lineal, Options{})
		assert.True(t, errors.Is(err, ErrConfiguration))
	}
	{ // Half an initial guess
		for _, method := range methods {
			_, err := NewMongeAmpereMover(m, ringMonitor, method,
				Options{PhiInit: make([]float64, m.NumVertices), Logger: quiet})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			assert.Contains(t, err.Error(), "need to initialise both phi *and* sigma")
		}
	}
	{ // Negative options
		_, err := NewMongeAmpereMover(m, ringMonitor, types.Relaxation, Options{PseudoTimestep: -1})
		assert.True(t, errors.Is(err, ErrConfiguration))
		_, err = NewMongeAmpereMover(m, ringMonitor, types.Relaxation, Options{MaxIter: -1})
		assert.True(t, errors.Is(err, ErrConfiguration))
	}
	{ // Monitor of the wrong length
		_, err := NewMongeAmpereMover(m, func(*mesh.Mesh) []float64 { return []float64{1} },
			types.Relaxation, Options{})
		assert.True(t, errors.Is(err, ErrConfiguration))
	}
}

func TestUniformMonitor(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		for _, method := range methods {
			var (
				n      = map[int]int{1: 10, 2: 6, 3: 3}[dim]
				m      = unitMesh(dim, n)
				coords = m.CopyCoordinates()
				sigma  = make([][]float64, m.NumVertices)
			)
			for i := range sigma {
				sigma[i] = make([]float64, dim*dim)
			}
			mv, err := NewMongeAmpereMover(m, constMonitor, method, Options{
				PhiInit:   make([]float64, m.NumVertices),
				SigmaInit: sigma,
				Rtol:      1.e-3,
				Logger:    quiet,
			})
			require.NoError(t, err, "dim %d method %s", dim, method)
			iters, err := mv.Move()
			require.NoError(t, err, "dim %d method %s", dim, method)
			assert.Equal(t, 0, iters, "dim %d method %s", dim, method)
			assert.InDelta(t, 0., maxDistance(coords, m.Coordinates), 1.e-12)
			assert.Equal(t, method, mv.Method())
			assert.InDelta(t, 1., mv.Diagnostics().MinMax, 1.e-12)
		}
	}
	{ // Tensors of the wrong size are rejected
		m := unitMesh(2, 2)
		_, err := NewMongeAmpereMover(m, constMonitor, types.Relaxation, Options{
			PhiInit:   make([]float64, m.NumVertices),
			SigmaInit: make([][]float64, m.NumVertices),
		})
		assert.True(t, errors.Is(err, ErrConfiguration))
	}
}

func TestMaxIterations(t *testing.T) {
	for _, method := range methods {
		m := unitMesh(2, 4)
		mv, err := NewMongeAmpereMover(m, ringMonitor, method, Options{MaxIter: 1, Logger: quiet})
		require.NoError(t, err)
		_, err = mv.Move()
		require.Error(t, err, "method %s", method)
		var ce *ConvergenceError
		require.True(t, errors.As(err, &ce), "method %s: %v", method, err)
		assert.Equal(t, FailedToConverge, ce.Reason)
		assert.EqualError(t, err, "solver failed to converge in 1 iteration")
	}
}

func TestDivergence(t *testing.T) {
	m := unitMesh(2, 4)
	mv, err := NewMongeAmpereRelaxation(m, ringMonitor, Options{Dtol: 1.e-8, Logger: quiet})
	require.NoError(t, err)
	_, err = mv.Move()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConvergence))
	assert.EqualError(t, err, "solver diverged after 1 iteration")
}

func TestChangeMonitor(t *testing.T) {
	for _, method := range methods {
		var (
			m      = unitMesh(2, 8)
			coords = m.CopyCoordinates()
			atol   = 1.e-3
			rtol   = 1.e2 * atol * atol
		)
		mv, err := NewMongeAmpereMover(m, ringMonitor, method, Options{Rtol: rtol, Logger: quiet})
		require.NoError(t, err)
		_, err = mv.Move()
		require.NoError(t, err, "method %s", method)
		assert.Greater(t, maxDistance(coords, m.Coordinates), atol)
		assert.False(t, m.IsTangled(mesh.UnitSquareMesh(8, 8).OrientationSigns()))

		require.NoError(t, mv.SetMonitorFunction(constMonitor))
		_, err = mv.Move()
		require.NoError(t, err, "method %s", method)
		assert.Less(t, maxDistance(coords, m.Coordinates), atol, "method %s", method)

		assert.True(t, errors.Is(mv.SetMonitorFunction(nil), ErrConfiguration))
	}
}

func TestBoundaryLengths(t *testing.T) {
	for _, method := range methods {
		for _, fix := range []bool{true, false} {
			var (
				m        = unitMesh(2, 8)
				length   = m.BoundaryMeasure()
				bnodes   = m.BoundaryVertices()
				bndCoord = make([][]float64, len(bnodes))
			)
			for i, v := range bnodes {
				bndCoord[i] = append([]float64{}, m.Coordinates[v]...)
			}
			mv, err := NewMongeAmpereMover(m, ringMonitor, method,
				Options{FixBoundaryNodes: fix, Rtol: 1.e-3, Logger: quiet})
			require.NoError(t, err)
			_, err = mv.Move()
			require.NoError(t, err, "method %s fix %v", method, fix)
			assert.InDelta(t, length, m.BoundaryMeasure(), 1.e-8)
			for i, v := range bnodes {
				if fix {
					assert.InDeltaSlice(t, bndCoord[i], m.Coordinates[v], 1.e-12)
				}
				// Boundary vertices stay on their side of the square
				onSide := false
				for k, x := range m.Coordinates[v] {
					if bndCoord[i][k] == x && (x == 0 || x == 1) {
						onSide = true
					}
				}
				assert.True(t, onSide)
			}
		}
	}
}

func TestHessianDimension(t *testing.T) {
	for _, dim := range []int{1, 3} {
		for _, method := range methods {
			mv, err := NewMongeAmpereMover(unitMesh(dim, 3), ringMonitor, method, Options{Logger: quiet})
			require.NoError(t, err)
			_, err = mv.Move()
			assert.True(t, errors.Is(err, ErrUnsupported), "dim %d method %s: %v", dim, method, err)
		}
	}
}

func TestContinue(t *testing.T) {
	for _, method := range methods {
		rtol := 1.e-3
		mv, err := NewMongeAmpereMover(unitMesh(2, 6), ringMonitor, method, Options{Rtol: 0.1, Logger: quiet})
		require.NoError(t, err)
		_, err = mv.Move()
		require.NoError(t, err)
		mv.SetRtol(rtol)
		itContinue, err := mv.Move()
		require.NoError(t, err)

		naive, err := NewMongeAmpereMover(unitMesh(2, 6), ringMonitor, method, Options{Rtol: rtol, Logger: quiet})
		require.NoError(t, err)
		itNaive, err := naive.Move()
		require.NoError(t, err)
		assert.LessOrEqual(t, itContinue, itNaive, "method %s", method)
	}
}

func TestMongeAmpereFunction(t *testing.T) {
	m := unitMesh(2, 6)
	phi, sigma, err := MongeAmpere(m, ringMonitor, types.Relaxation, Options{Rtol: 1.e-4, Logger: quiet})
	require.NoError(t, err)
	assert.Len(t, phi, m.NumVertices)
	assert.Len(t, sigma, m.NumVertices)
	assert.Len(t, sigma[0], 4)
	// Seeding a new mover with the solution converges immediately
	mv, err := NewMongeAmpereMover(unitMesh(2, 6), ringMonitor, types.Relaxation,
		Options{Rtol: 1.e-4, PhiInit: phi, SigmaInit: sigma, Logger: quiet})
	require.NoError(t, err)
	iters, err := mv.Move()
	require.NoError(t, err)
	assert.Equal(t, 0, iters)
}

// rotatedSquare is the unit square turned by 45 degrees about its centre, each side uniquely tagged
func rotatedSquare(n int) *mesh.Mesh {
	var (
		base   = mesh.UnitSquareMesh(n, n)
		c, s   = math.Cos(math.Pi / 4), math.Sin(math.Pi / 4)
		coords = base.CopyCoordinates()
	)
	for _, x := range coords {
		dx, dy := x[0]-0.5, x[1]-0.5
		x[0], x[1] = 0.5+c*dx-s*dy, 0.5+s*dx+c*dy
	}
	return mesh.NewMesh(2, coords, base.Cells, func(verts []int, x []float64) int {
		dx, dy := x[0]-0.5, x[1]-0.5
		u, v := c*dx+s*dy, -s*dx+c*dy
		switch {
		case math.Abs(u+0.5) < 1.e-10:
			return 1
		case math.Abs(u-0.5) < 1.e-10:
			return 2
		case math.Abs(v+0.5) < 1.e-10:
			return 3
		}
		return 4
	})
}

func TestNonAxisAligned(t *testing.T) {
	{ // One tag on every exterior face of a cube has no single normal direction
		base := unitMesh(3, 2)
		m := mesh.NewMesh(3, base.CopyCoordinates(), base.Cells, func([]int, []float64) int { return 1 })
		mv, err := NewMongeAmpereMover(m, ringMonitor, types.Relaxation, Options{Logger: quiet})
		require.NoError(t, err)
		_, err = mv.Move()
		assert.True(t, errors.Is(err, ErrUnsupported))
	}
	{ // Vertices slide along the sides of a rotated square, corners stay put
		m := rotatedSquare(6)
		var (
			length  = m.BoundaryMeasure()
			corners = make(map[int][]float64)
			vt      = m.VertexTags()
		)
		for v, tags := range vt {
			if len(tags) > 1 {
				corners[v] = append([]float64{}, m.Coordinates[v]...)
			}
		}
		require.Len(t, corners, 4)
		mv, err := NewMongeAmpereMover(m, ringMonitor, types.Relaxation,
			Options{Rtol: 1.e-3, Logger: quiet})
		require.NoError(t, err)
		_, err = mv.Move()
		require.NoError(t, err)
		assert.InDelta(t, length, m.BoundaryMeasure(), 1.e-8)
		for v, x := range corners {
			assert.InDeltaSlice(t, x, m.Coordinates[v], 1.e-12)
		}
	}
}
