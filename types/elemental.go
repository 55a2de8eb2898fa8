package types

import (
	"fmt"
	"math"
)

// EdgeKey identifies an undirected mesh edge. The smaller vertex index sits in the low 32 bits, so both
// orientations of an edge give the same key and keys can be used directly as map indices.
type EdgeKey uint64

func NewEdgeKey(verts [2]int) EdgeKey {
	lo, hi := verts[0], verts[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 || hi > math.MaxUint32 {
		panic(fmt.Errorf("edge %v does not fit in an edge key", verts))
	}
	return EdgeKey(uint64(hi)<<32 | uint64(lo))
}

// Vertices returns the endpoints in ascending order
func (ek EdgeKey) Vertices() [2]int {
	return [2]int{int(ek & math.MaxUint32), int(ek >> 32)}
}
