package movement

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks invalid options, missing inputs and malformed boundary conditions
	ErrConfiguration = errors.New("configuration error")
	// ErrConvergence is matched by every *ConvergenceError
	ErrConvergence = errors.New("convergence error")
	// ErrUnsupported marks operations not available for the mesh dimension or method
	ErrUnsupported = errors.New("unsupported operation")
)

type ConvergenceReason uint8

const (
	Diverged ConvergenceReason = iota
	FailedToConverge
)

func (r ConvergenceReason) String() string {
	switch r {
	case Diverged:
		return "Diverged"
	case FailedToConverge:
		return "FailedToConverge"
	}
	return fmt.Sprintf("ConvergenceReason(%d)", uint8(r))
}

// ConvergenceError reports a solve that stopped without meeting its tolerance
type ConvergenceError struct {
	Reason     ConvergenceReason
	Iterations int
}

func (e *ConvergenceError) Error() string {
	switch e.Reason {
	case Diverged:
		return fmt.Sprintf("solver diverged after %s", iterationString(e.Iterations))
	default:
		return fmt.Sprintf("solver failed to converge in %s", iterationString(e.Iterations))
	}
}

func (e *ConvergenceError) Is(target error) bool {
	return target == ErrConvergence
}

func iterationString(n int) string {
	if n == 1 {
		return "1 iteration"
	}
	return fmt.Sprintf("%d iterations", n)
}

func configurationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func unsupportedError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}
