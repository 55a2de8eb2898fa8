package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshmove/InputParameters"
)

func TestRunMongeAmpere(t *testing.T) {
	var input InputParameters.MoverParameters
	require.NoError(t, input.Parse([]byte(`
Title: Uniform
Method: relaxation
Monitor: constant
Mesh:
  Dim: 2
  CellsPerSide: 4
`)))
	require.Equal(t, 4, input.Mesh.CellsPerSide)
	m, err := RunMongeAmpere(&input)
	require.NoError(t, err)
	assert.Equal(t, 25, m.NumVertices)
	assert.InDelta(t, 1., m.TotalVolume(), 1.e-12)

	input.Method = "springy"
	_, err = RunMongeAmpere(&input)
	assert.Error(t, err)

	{ // Bad mesh parameters are errors, not generator panics
		bad := InputParameters.MoverParameters{Method: "relaxation", Mesh: InputParameters.MeshParameters{Dim: 2}}
		_, err = RunMongeAmpere(&bad)
		assert.EqualError(t, err, "mesh needs at least one cell per side, have 0")
		bad.Mesh = InputParameters.MeshParameters{Dim: 4, CellsPerSide: 2}
		_, err = RunMongeAmpere(&bad)
		assert.EqualError(t, err, "mesh dimension must be 1, 2 or 3, have 4")
	}
}

func TestRunSpring(t *testing.T) {
	var input InputParameters.MoverParameters
	require.NoError(t, input.ParseTOML([]byte(`
Method = "lineal"

[Mesh]
Dim = 2
CellsPerSide = 4

[Displacement]
2 = [0.2, 0.0]
`)))
	m, err := RunSpring(&input)
	require.NoError(t, err)
	assert.InDelta(t, 1.2, m.TotalVolume(), 1.e-12)

	input.Displacement["2"] = []float64{0.2}
	_, err = RunSpring(&input)
	assert.Error(t, err)

	input.Mesh.CellsPerSide = -1
	_, err = RunSpring(&input)
	assert.Error(t, err)
}

func TestSpringCornerOrder(t *testing.T) {
	// Tags 2 (x=1) and 4 (y=1) share the corner (1,1), the higher tag is applied last
	input := InputParameters.MoverParameters{
		Method:       "lineal",
		Mesh:         InputParameters.MeshParameters{Dim: 2, CellsPerSide: 3},
		Displacement: map[string][]float64{"4": {0, 0.1}, "2": {0.2, 0}},
	}
	for i := 0; i < 10; i++ {
		m, err := RunSpring(&input)
		require.NoError(t, err)
		corner := m.NumVertices - 1
		assert.InDeltaSlice(t, []float64{1, 1.1}, m.Coordinates[corner], 1.e-12)
	}
}

func TestProcessInputVerbose(t *testing.T) {
	viper.Set("verbose", true)
	defer viper.Set("verbose", false)
	var buf bytes.Buffer
	SpringCmd.SetOut(&buf)
	defer SpringCmd.SetOut(nil)
	ip, err := processInput(SpringCmd, "lineal")
	require.NoError(t, err)
	assert.Equal(t, "lineal", ip.Method)
	assert.Equal(t, 10, ip.Mesh.CellsPerSide)
	assert.Contains(t, buf.String(), "[lineal]\t\t= Method")
	assert.Contains(t, buf.String(), "[2, 10]")
}
