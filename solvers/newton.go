package solvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/meshmove/utils"
)

// NonlinearProblem is a system F(x) = 0 together with a way of computing Newton steps for it
type NonlinearProblem interface {
	// Residual evaluates F(x) into f
	Residual(x, f []float64) error
	// Step solves the (approximate, preconditioned) Jacobian system J(x).dx = -f
	Step(x, f, dx []float64) error
}

// Callbacks let the owner of a problem refresh state that F and J depend on but that is not part of x.
// PreFunction runs before every residual evaluation and PreJacobian before every step, both with the point
// about to be used. Monitor runs after every completed iteration, including iteration 0, and cannot alter
// the course of the solve.
type Callbacks struct {
	PreFunction func(x []float64) error
	PreJacobian func(x []float64) error
	Monitor     func(iter int, x []float64, fnorm float64)
}

// Newton is a damped Newton iteration with backtracking on the residual 2-norm. Converged means
// |F| < Atol or |F| < Rtol*|F(x0)|.
type Newton struct {
	Atol            float64
	Rtol            float64
	MaxIter         int
	LineSearchSteps int
	NullSpace       [][]float64 // Orthonormal vectors removed from every step
	Callbacks
}

func NewNewton(atol float64, maxIter int) *Newton {
	return &Newton{
		Atol:            atol,
		Rtol:            1.e-8,
		MaxIter:         maxIter,
		LineSearchSteps: 10,
	}
}

// Solve updates x in place and returns the number of completed iterations
func (s *Newton) Solve(p NonlinearProblem, x []float64) (iters int, err error) {
	var (
		n     = len(x)
		f     = make([]float64, n)
		ft    = make([]float64, n)
		xt    = make([]float64, n)
		dx    = make([]float64, n)
		fnorm float64
	)
	if fnorm, err = s.evaluate(p, x, f); err != nil {
		return
	}
	fnorm0 := fnorm
	s.monitor(0, x, fnorm)
	for iters = 0; ; iters++ {
		if fnorm < s.Atol || fnorm < s.Rtol*fnorm0 {
			return
		}
		if iters >= s.MaxIter {
			err = fmt.Errorf("%w: |F| = %g after %d iterations", ErrMaxIterations, fnorm, iters)
			return
		}
		if s.PreJacobian != nil {
			if err = s.PreJacobian(x); err != nil {
				return
			}
		}
		if err = p.Step(x, f, dx); err != nil {
			return
		}
		s.removeNullSpace(dx)
		var (
			lambda   = 1.
			accepted bool
			ftnorm   float64
		)
		for ls := 0; ls <= s.LineSearchSteps; ls++ {
			floats.AddScaledTo(xt, x, lambda, dx)
			ftnorm, err = s.evaluate(p, xt, ft)
			if err == nil && ftnorm <= (1-1.e-4*lambda)*fnorm {
				accepted = true
				break
			}
			lambda *= 0.5
		}
		if !accepted {
			if err == nil {
				err = fmt.Errorf("%w: |F| = %g at iteration %d", ErrLineSearch, fnorm, iters+1)
			}
			iters++
			return
		}
		copy(x, xt)
		copy(f, ft)
		fnorm = ftnorm
		s.monitor(iters+1, x, fnorm)
	}
}

func (s *Newton) evaluate(p NonlinearProblem, x, f []float64) (fnorm float64, err error) {
	if s.PreFunction != nil {
		if err = s.PreFunction(x); err != nil {
			return
		}
	}
	if err = p.Residual(x, f); err != nil {
		return
	}
	if !utils.IsFinite(f) {
		err = ErrNotFinite
		return
	}
	fnorm = floats.Norm(f, 2)
	return
}

func (s *Newton) removeNullSpace(dx []float64) {
	for _, z := range s.NullSpace {
		floats.AddScaled(dx, -floats.Dot(z, dx), z)
	}
}

func (s *Newton) monitor(iter int, x []float64, fnorm float64) {
	if s.Monitor != nil && !math.IsNaN(fnorm) {
		s.Monitor(iter, x, fnorm)
	}
}
