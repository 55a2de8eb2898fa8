package solvers

import "errors"

var (
	// ErrMaxIterations indicates the iteration cap was reached before the tolerance was met.
	ErrMaxIterations = errors.New("solvers: maximum number of iterations reached")
	// ErrLineSearch indicates no step length along the Newton direction reduced the residual.
	ErrLineSearch = errors.New("solvers: line search failed to reduce the residual")
	// ErrNotFinite indicates a NaN or Inf appeared in a residual or iterate.
	ErrNotFinite = errors.New("solvers: non-finite residual")
	// ErrSingular indicates a dense system could not be factorised.
	ErrSingular = errors.New("solvers: singular system")
	// ErrDimension indicates operands of incompatible size.
	ErrDimension = errors.New("solvers: dimension mismatch")
)
