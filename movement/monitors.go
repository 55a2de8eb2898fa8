package movement

import (
	"math"
	"strings"

	"github.com/notargets/meshmove/fem"
	"github.com/notargets/meshmove/mesh"
)

// ConstantMonitor asks for a uniform mesh
func ConstantMonitor(m *mesh.Mesh) []float64 {
	return fem.Interpolate(m, func([]float64) float64 { return 1 })
}

// RingMonitor refines towards the sphere of the given radius about the centre of the unit domain
func RingMonitor(radius, amplitude, sharpness float64) MonitorFunc {
	return func(m *mesh.Mesh) []float64 {
		return fem.Interpolate(m, func(x []float64) float64 {
			var r2 float64
			for _, xi := range x {
				r2 += (xi - 0.5) * (xi - 0.5)
			}
			d := math.Sqrt(r2) - radius
			return 1 + amplitude*math.Exp(-sharpness*d*d)
		})
	}
}

// BumpMonitor refines towards the centre of the unit domain
func BumpMonitor(amplitude, sharpness float64) MonitorFunc {
	return RingMonitor(0, amplitude, sharpness)
}

// NamedMonitor resolves the monitor names accepted in parameter files
func NamedMonitor(name string) (MonitorFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "constant", "uniform":
		return ConstantMonitor, nil
	case "ring":
		return RingMonitor(0.25, 2, 10), nil
	case "bump":
		return BumpMonitor(2, 10), nil
	}
	return nil, configurationError("monitor %q not recognised", name)
}
