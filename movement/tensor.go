package movement

// Tensors are stored flattened row major, entry (a,b) of a d x d tensor at a*d+b

// shiftedDeterminant is det(I + s)
func shiftedDeterminant(s []float64, d int) (det float64) {
	a := shiftedIdentity(s, d)
	switch d {
	case 1:
		det = a[0]
	case 2:
		det = a[0]*a[3] - a[1]*a[2]
	case 3:
		det = a[0]*(a[4]*a[8]-a[5]*a[7]) -
			a[1]*(a[3]*a[8]-a[5]*a[6]) +
			a[2]*(a[3]*a[7]-a[4]*a[6])
	default:
		panic("tensor dimension must be 1, 2 or 3")
	}
	return
}

// shiftedCofactor is the cofactor matrix of I + s, the derivative of det(I + s) with respect to s
func shiftedCofactor(s []float64, d int) (c []float64) {
	a := shiftedIdentity(s, d)
	c = make([]float64, d*d)
	switch d {
	case 1:
		c[0] = 1
	case 2:
		c[0], c[1] = a[3], -a[2]
		c[2], c[3] = -a[1], a[0]
	case 3:
		// Rows of the cofactor matrix are cross products of the other two rows
		for i := 0; i < 3; i++ {
			r1, r2 := a[((i+1)%3)*3:((i+1)%3)*3+3], a[((i+2)%3)*3:((i+2)%3)*3+3]
			c[i*3+0] = r1[1]*r2[2] - r1[2]*r2[1]
			c[i*3+1] = r1[2]*r2[0] - r1[0]*r2[2]
			c[i*3+2] = r1[0]*r2[1] - r1[1]*r2[0]
		}
	default:
		panic("tensor dimension must be 1, 2 or 3")
	}
	return
}

func shiftedIdentity(s []float64, d int) (a []float64) {
	if len(s) != d*d {
		panic("tensor has the wrong number of entries")
	}
	a = make([]float64, d*d)
	copy(a, s)
	for i := 0; i < d; i++ {
		a[i*d+i] += 1
	}
	return
}
