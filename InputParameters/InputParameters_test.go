package InputParameters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	fileInput := []byte(`
Title: Ring
Method: quasi_newton
Monitor: ring
Mesh:
  Dim: 2
  CellsPerSide: 12
Rtol: 1.0e-6
MaxIterations: 50
FixBoundaryNodes: true
Displacement:
  4: [0., 0.1]
`)
	var input MoverParameters
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, "quasi_newton", input.Method)
	assert.Equal(t, 2, input.Mesh.Dim)
	assert.Equal(t, 12, input.Mesh.CellsPerSide)
	var buf bytes.Buffer
	input.Print(&buf)
	assert.Contains(t, buf.String(), "[2, 12]")
	assert.Contains(t, buf.String(), "Displacement[4] = [0 0.1]")

	opts := input.Options()
	assert.Equal(t, 1.e-6, opts.Rtol)
	assert.Equal(t, 50, opts.MaxIter)
	assert.True(t, opts.FixBoundaryNodes)
	assert.Zero(t, opts.PseudoTimestep)

	disp, err := input.BoundaryDisplacements()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.1}, disp[4])

	{ // A short "N" key is read as a boolean by YAML 1.1 and must not be mistaken for the cell count
		var short MoverParameters
		require.NoError(t, short.Parse([]byte("Mesh:\n  Dim: 2\n  N: 12\n")))
		assert.Zero(t, short.Mesh.CellsPerSide)
	}

	input.Displacement["top"] = []float64{1, 1}
	_, err = input.BoundaryDisplacements()
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	tomlFile := filepath.Join(dir, "spring.toml")
	require.NoError(t, os.WriteFile(tomlFile, []byte(`
Title = "Lift"
Method = "lineal"
FinalTime = 1.5

[Mesh]
Dim = 2
CellsPerSide = 4

[Displacement]
4 = [0.0, 0.1]
`), 0644))
	ip, err := ReadFile(tomlFile)
	require.NoError(t, err)
	assert.Equal(t, "lineal", ip.Method)
	assert.Equal(t, 4, ip.Mesh.CellsPerSide)
	assert.Equal(t, 1.5, ip.FinalTime)
	assert.Equal(t, []float64{0, 0.1}, ip.Displacement["4"])

	yamlFile := filepath.Join(dir, "ma.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("Method: relaxation\nPseudoTimestep: 0.2\n"), 0644))
	ip, err = ReadFile(yamlFile)
	require.NoError(t, err)
	assert.Equal(t, 0.2, ip.PseudoTimestep)

	_, err = ReadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
