package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is the assembly form of a sparse operator, entries are accumulated then frozen into a CSR
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims and At minimally satisfy the mat.Matrix interface needs of the assembly code.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

// AddAt accumulates val into (i,j), which is how element contributions are scattered
func (m DOK) AddAt(i, j int, val float64) {
	m.checkWritable()
	if val == 0 {
		return
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

// CSR is the frozen form used for products, it is never written after conversion
type CSR struct {
	M    *sparse.CSR
	name string
}

func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) Name() string        { return m.name }

// MulVec returns A.x as a plain slice
func (m CSR) MulVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: matrix %s has %d columns, vector has length %d", m.name, nc, len(x)))
	}
	y = make([]float64, nr)
	m.MulVecTo(y, x)
	return
}

// MulVecTo overwrites y with A.x, the underlying library accumulates so y is cleared first
func (m CSR) MulVecTo(y, x []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(y) != nr || len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: matrix %s is %dx%d, have y[%d] and x[%d]",
			m.name, nr, nc, len(y), len(x)))
	}
	for i := range y {
		y[i] = 0
	}
	m.M.MulVecTo(y, false, x)
}

// DoNonZero visits every stored entry
func (m CSR) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

// Diagonal extracts the main diagonal
func (m CSR) Diagonal() (d []float64) {
	var (
		nr, _ = m.Dims()
	)
	d = make([]float64, nr)
	m.DoNonZero(func(i, j int, v float64) {
		if i == j {
			d[i] += v
		}
	})
	return
}

func (m CSR) ToDense() (R *mat.Dense) {
	var (
		nr, nc = m.Dims()
	)
	R = mat.NewDense(nr, nc, nil)
	m.DoNonZero(func(i, j int, v float64) {
		R.Set(i, j, R.At(i, j)+v)
	})
	return
}
