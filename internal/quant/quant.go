// Package quant implements the byte quantizers for splat attributes.
//
// Every encoder clamps to [0, 255] before converting to a byte. Out of range
// input is clamped silently and never reported as an error.
package quant

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

const (
	colorScale = 0.15

	// SH components below shBandSplit use shCoarseBucket (about 5 bits),
	// the rest use shFineBucket (about 4 bits).
	shBandSplit    = 9
	shCoarseBucket = 1 << (8 - 5)
	shFineBucket   = 1 << (8 - 4)
)

// clampByte rounds v and clamps it to [0, 255].
func clampByte(v float64) byte {
	if math.IsNaN(v) {
		return 0
	}
	return byte(math.Min(math.Max(math.Round(v), 0), 255))
}

// Sigmoid maps a logit to (0, 1).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// InvSigmoid maps a probability back to logit space.
func InvSigmoid(x float64) float64 {
	return math.Log(x / (1 - x))
}

// Scale is a log-space scale quantized to three bytes.
type Scale [3]byte

// EncodeScale quantizes a log-space scale as round((s+10)*16).
func EncodeScale(s r3.Vector) Scale {
	return Scale{
		clampByte((s.X + 10) * 16),
		clampByte((s.Y + 10) * 16),
		clampByte((s.Z + 10) * 16),
	}
}

// Decode returns the log-space scale.
func (q Scale) Decode() r3.Vector {
	return r3.Vector{
		X: float64(q[0])/16 - 10,
		Y: float64(q[1])/16 - 10,
		Z: float64(q[2])/16 - 10,
	}
}

// Color is a DC spherical harmonic color term quantized to three bytes.
type Color [3]byte

// EncodeColor quantizes a DC color as round(c*0.15*255 + 127.5).
func EncodeColor(c r3.Vector) Color {
	return Color{
		clampByte(c.X*colorScale*255 + 127.5),
		clampByte(c.Y*colorScale*255 + 127.5),
		clampByte(c.Z*colorScale*255 + 127.5),
	}
}

// Decode returns the DC color term.
func (q Color) Decode() r3.Vector {
	return r3.Vector{
		X: (float64(q[0])/255 - 0.5) / colorScale,
		Y: (float64(q[1])/255 - 0.5) / colorScale,
		Z: (float64(q[2])/255 - 0.5) / colorScale,
	}
}

// Alpha is an opacity stored as its sigmoid activation.
type Alpha byte

// EncodeAlpha quantizes a logit-space opacity as round(sigmoid(a)*255).
func EncodeAlpha(a float64) Alpha {
	return Alpha(clampByte(Sigmoid(a) * 255))
}

// Decode returns the logit-space opacity. 0 and 255 decode to -Inf and +Inf.
func (q Alpha) Decode() float64 {
	return InvSigmoid(float64(q) / 255)
}

// Quat holds the XYZ components of a unit quaternion with a non-negative W.
// W is rebuilt on decode.
type Quat [3]byte

// EncodeQuat normalizes q, negates it when W is negative and quantizes XYZ.
// A zero or non-finite quaternion encodes as the identity rotation.
func EncodeQuat(q quat.Number) Quat {
	n := quat.Abs(q)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Quat{128, 128, 128}
	}
	s := 127.5 / n
	if q.Real < 0 {
		s = -s
	}
	return Quat{
		clampByte(q.Imag*s + 127.5),
		clampByte(q.Jmag*s + 127.5),
		clampByte(q.Kmag*s + 127.5),
	}
}

// Decode rebuilds the quaternion, W = sqrt(max(0, 1-|xyz|^2)).
func (q Quat) Decode() quat.Number {
	x := float64(q[0])/127.5 - 1
	y := float64(q[1])/127.5 - 1
	z := float64(q[2])/127.5 - 1
	w := math.Sqrt(math.Max(0, 1-(x*x+y*y+z*z)))
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// EncodeSH quantizes one harmonic component to a multiple of bucket.
func EncodeSH(x float64, bucket int) byte {
	if math.IsNaN(x) {
		x = 0
	}
	// Clamp before the int conversion; huge or infinite input must saturate.
	q := int(math.Min(math.Max(math.Round(x*128)+128, -256), 511))
	q = (q + bucket/2) / bucket * bucket
	return byte(min(max(q, 0), 255))
}

// DecodeSH returns the harmonic component for a quantized byte.
func DecodeSH(q byte) float64 {
	return (float64(q) - 128) / 128
}

// BucketFor returns the bucket size for the coefficient-major component i.
func BucketFor(i int) int {
	if i < shBandSplit {
		return shCoarseBucket
	}
	return shFineBucket
}

// EncodeHarmonics quantizes len(dst) coefficient-major components of src.
func EncodeHarmonics(dst []byte, src []float64) {
	for i := range dst {
		dst[i] = EncodeSH(src[i], BucketFor(i))
	}
}

// DecodeHarmonics unquantizes len(src) components into dst.
func DecodeHarmonics(dst []float64, src []byte) {
	for i, q := range src {
		dst[i] = DecodeSH(q)
	}
}
