// Package fidelity measures how far a decoded splat cloud drifts from its
// source and compares the drift of different packing settings.
package fidelity

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/splatkit/spz"
)

// ErrMismatch indicates clouds that cannot be compared splat by splat.
var ErrMismatch = errors.New("fidelity: clouds differ in shape")

// Attribute names a measured splat attribute.
type Attribute string

// Measured attributes.
const (
	Position Attribute = "position"
	Scale    Attribute = "scale"
	Rotation Attribute = "rotation"
	Alpha    Attribute = "alpha"
	Color    Attribute = "color"
	SH       Attribute = "sh"
)

// Attributes lists every measured attribute in report order.
var Attributes = []Attribute{Position, Scale, Rotation, Alpha, Color, SH}

// Errors holds per-splat absolute errors for each attribute.
//
// Position is the Euclidean distance. Scale, Color and SH hold one sample per
// component. Rotation is the angle between the two orientations in degrees.
// Alpha is measured after the sigmoid, in opacity space.
type Errors struct {
	Position []float64
	Scale    []float64
	Rotation []float64
	Alpha    []float64
	Color    []float64
	SH       []float64
}

// Samples returns the error samples for attr.
func (e *Errors) Samples(attr Attribute) []float64 {
	switch attr {
	case Position:
		return e.Position
	case Scale:
		return e.Scale
	case Rotation:
		return e.Rotation
	case Alpha:
		return e.Alpha
	case Color:
		return e.Color
	case SH:
		return e.SH
	}
	return nil
}

// Append adds the samples of o to e.
func (e *Errors) Append(o *Errors) {
	e.Position = append(e.Position, o.Position...)
	e.Scale = append(e.Scale, o.Scale...)
	e.Rotation = append(e.Rotation, o.Rotation...)
	e.Alpha = append(e.Alpha, o.Alpha...)
	e.Color = append(e.Color, o.Color...)
	e.SH = append(e.SH, o.SH...)
}

// Measure compares want, the source cloud, with got, a decoded copy.
func Measure(want, got *spz.Cloud) (*Errors, error) {
	if want.Count() != got.Count() || want.SHDegree() != got.SHDegree() {
		return nil, fmt.Errorf("%w: %d splats degree %d vs %d splats degree %d",
			ErrMismatch, want.Count(), want.SHDegree(), got.Count(), got.SHDegree())
	}

	n := want.Count()
	shLen := want.SHDim() * 3
	e := &Errors{
		Position: make([]float64, 0, n),
		Scale:    make([]float64, 0, 3*n),
		Rotation: make([]float64, 0, n),
		Alpha:    make([]float64, 0, n),
		Color:    make([]float64, 0, 3*n),
		SH:       make([]float64, 0, shLen*n),
	}

	for i := 0; i < n; i++ {
		a, b := want.At(i), got.At(i)
		e.Position = append(e.Position, a.Position.Sub(b.Position).Norm())
		e.Scale = appendComponents(e.Scale, a.Scale, b.Scale)
		e.Rotation = append(e.Rotation, AngleDegrees(a.Rotation, b.Rotation))
		e.Alpha = append(e.Alpha, math.Abs(spz.Sigmoid(a.Alpha)-spz.Sigmoid(b.Alpha)))
		e.Color = appendComponents(e.Color, a.Color, b.Color)
		for k := 0; k < shLen; k++ {
			e.SH = append(e.SH, math.Abs(a.SH[k]-b.SH[k]))
		}
	}
	return e, nil
}

func appendComponents(dst []float64, a, b r3.Vector) []float64 {
	d := a.Sub(b)
	return append(dst, math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z))
}

// AngleDegrees returns the rotation angle between the orientations a and b.
// Quaternions q and -q are the same orientation.
func AngleDegrees(a, b quat.Number) float64 {
	na, nb := quat.Abs(a), quat.Abs(b)
	if na == 0 || nb == 0 {
		return 0
	}
	dot := (a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag) / (na * nb)
	dot = math.Min(math.Abs(dot), 1)
	return 2 * math.Acos(dot) * 180 / math.Pi
}

// Tolerances bounds the error of each attribute.
type Tolerances map[Attribute]float64

// DefaultTolerances are the bounds a gzip SPZ round trip at 12 fractional
// bits stays within. SH uses the coarser high-band bound.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Position: 1.0 / 1024,
		Scale:    0.06,
		Rotation: 18,
		Alpha:    0.01,
		Color:    0.1,
		SH:       0.066,
	}
}

// Violation is an attribute whose maximum error exceeds its tolerance.
type Violation struct {
	Attribute Attribute
	Max       float64
	Tolerance float64
	Count     int // samples over tolerance
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: max error %.4g exceeds %.4g in %d samples", v.Attribute, v.Max, v.Tolerance, v.Count)
}

// Check returns the attributes of e that exceed tol, in report order.
func (e *Errors) Check(tol Tolerances) []Violation {
	var out []Violation
	for _, attr := range Attributes {
		limit, ok := tol[attr]
		if !ok {
			continue
		}
		v := Violation{Attribute: attr, Tolerance: limit}
		for _, x := range e.Samples(attr) {
			if x > limit {
				v.Count++
			}
			v.Max = math.Max(v.Max, x)
		}
		if v.Count > 0 {
			out = append(out, v)
		}
	}
	return out
}

// Summary describes every attribute of e.
func (e *Errors) Summary() map[Attribute]*DescriptiveStats {
	out := make(map[Attribute]*DescriptiveStats, len(Attributes))
	for _, attr := range Attributes {
		out[attr] = Describe(e.Samples(attr))
	}
	return out
}
