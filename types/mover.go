package types

import (
	"fmt"
	"strings"
)

// MoverMethod selects one of the fixed set of mesh movement algorithms
type MoverMethod uint8

const (
	Relaxation MoverMethod = iota
	QuasiNewton
	Lineal
	Torsional
)

var MoverNameMap = map[string]MoverMethod{
	"relaxation":   Relaxation,
	"quasi_newton": QuasiNewton,
	"quasinewton":  QuasiNewton,
	"lineal":       Lineal,
	"torsional":    Torsional,
}

func (mm MoverMethod) String() string {
	switch mm {
	case Relaxation:
		return "relaxation"
	case QuasiNewton:
		return "quasi_newton"
	case Lineal:
		return "lineal"
	case Torsional:
		return "torsional"
	}
	return fmt.Sprintf("MoverMethod(%d)", uint8(mm))
}

// IsMongeAmpere is true for the methods solving the Monge-Ampere equation, false for the spring analogies
func (mm MoverMethod) IsMongeAmpere() bool {
	return mm == Relaxation || mm == QuasiNewton
}

func NewMoverMethod(label string) (mm MoverMethod, err error) {
	var (
		ok bool
	)
	if mm, ok = MoverNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("method %q not recognised", label)
	}
	return
}
