package splat

// Harmonics holds the spherical harmonic components beyond DC.
//
// The canonical order is coefficient-major: the RGB triple of coefficient k is
// stored at 3k, 3k+1, 3k+2. PLY files use channel-major order, where every red
// value precedes every green value; ToChannelMajor and ToCoefficientMajor
// convert at that boundary.
type Harmonics [MaxComponents]float64

// Coefficient returns the value of channel c (0..2) of coefficient k.
func (h *Harmonics) Coefficient(k, c int) float64 {
	checkIndex(c, 3)
	checkIndex(k*3+c, MaxComponents)
	return h[k*3+c]
}

// SetCoefficient sets channel c (0..2) of coefficient k.
func (h *Harmonics) SetCoefficient(k, c int, v float64) {
	checkIndex(c, 3)
	checkIndex(k*3+c, MaxComponents)
	h[k*3+c] = v
}

// ToChannelMajor returns the first dim coefficients in channel-major order,
// so element c*dim+k holds channel c of coefficient k.
func (h *Harmonics) ToChannelMajor(dim int) Harmonics {
	checkDim(dim)
	var out Harmonics
	for k := 0; k < dim; k++ {
		for c := 0; c < 3; c++ {
			out[c*dim+k] = h[k*3+c]
		}
	}
	return out
}

// ToCoefficientMajor is the inverse of ToChannelMajor.
func (h *Harmonics) ToCoefficientMajor(dim int) Harmonics {
	checkDim(dim)
	var out Harmonics
	for k := 0; k < dim; k++ {
		for c := 0; c < 3; c++ {
			out[k*3+c] = h[c*dim+k]
		}
	}
	return out
}

func checkDim(dim int) {
	checkIndex(dim, MaxComponents/3+1)
}
