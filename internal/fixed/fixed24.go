// Package fixed implements the 24-bit signed fixed-point numbers used to
// store splat positions.
//
// The number of fractional bits is not stored in the value. Callers carry it
// alongside (the SPZ header stores one value for the whole cloud).
package fixed

import (
	"math"

	"github.com/golang/geo/r3"
)

const (
	// MaxFractionalBits is the largest fractional bit count that still leaves
	// a sign bit in 24 bits.
	MaxFractionalBits = 23

	minInt24 = -1 << 23
	maxInt24 = 1<<23 - 1
)

// Fixed24 is a little-endian two's complement 24-bit integer.
type Fixed24 [3]byte

// FromFloat encodes v as round(v * 2^fractionalBits).
// Values outside the representable range saturate to the nearest bound.
func FromFloat(v float64, fractionalBits uint8) Fixed24 {
	scaled := math.Round(math.Ldexp(v, int(fractionalBits)))
	var n int32
	switch {
	case math.IsNaN(scaled):
		n = 0
	case scaled <= minInt24:
		n = minInt24
	case scaled >= maxInt24:
		n = maxInt24
	default:
		n = int32(scaled)
	}
	return FromInt32(n)
}

// FromInt32 stores the low 24 bits of n.
func FromInt32(n int32) Fixed24 {
	return Fixed24{byte(n), byte(n >> 8), byte(n >> 16)}
}

// Int32 sign-extends the value using bit 23 as the sign bit.
func (f Fixed24) Int32() int32 {
	u := uint32(f[0]) | uint32(f[1])<<8 | uint32(f[2])<<16
	if u&0x800000 != 0 {
		u |= 0xff000000
	}
	return int32(u)
}

// Float decodes the value with the given number of fractional bits.
func (f Fixed24) Float(fractionalBits uint8) float64 {
	return math.Ldexp(float64(f.Int32()), -int(fractionalBits))
}

// MinValue returns the smallest float representable with fractionalBits.
func MinValue(fractionalBits uint8) float64 {
	return math.Ldexp(minInt24, -int(fractionalBits))
}

// MaxValue returns the largest float representable with fractionalBits.
func MaxValue(fractionalBits uint8) float64 {
	return math.Ldexp(maxInt24, -int(fractionalBits))
}

// Vector3 is three independent Fixed24 components sharing one fractional
// bit count.
type Vector3 [3]Fixed24

// FromVector encodes each component of v.
func FromVector(v r3.Vector, fractionalBits uint8) Vector3 {
	return Vector3{
		FromFloat(v.X, fractionalBits),
		FromFloat(v.Y, fractionalBits),
		FromFloat(v.Z, fractionalBits),
	}
}

// Vector decodes each component.
func (v Vector3) Vector(fractionalBits uint8) r3.Vector {
	return r3.Vector{
		X: v[0].Float(fractionalBits),
		Y: v[1].Float(fractionalBits),
		Z: v[2].Float(fractionalBits),
	}
}
