package splat

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/splatkit/spz/internal/fixed"
)

// DefaultFractionalBits is the position precision used when packing.
const DefaultFractionalBits = 12

// Cloud stores unquantized splats column by column.
// The capacity is fixed at construction.
type Cloud struct {
	degree    int
	flags     Flags
	positions []r3.Vector
	scales    []r3.Vector
	rotations []quat.Number
	alphas    []float64
	colors    []r3.Vector
	sh        []float64
}

// NewCloud allocates a cloud of count splats with the given harmonics degree.
// Every rotation starts as the identity.
func NewCloud(count, degree int, flags Flags) (*Cloud, error) {
	if count < 0 {
		return nil, fmt.Errorf("splat: negative count %d", count)
	}
	if !validDegree(degree) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDegree, degree)
	}
	return newCloud(count, degree, flags), nil
}

// newCloud allocates without validating count and degree.
func newCloud(count, degree int, flags Flags) *Cloud {
	c := &Cloud{
		degree:    degree,
		flags:     flags,
		positions: make([]r3.Vector, count),
		scales:    make([]r3.Vector, count),
		rotations: make([]quat.Number, count),
		alphas:    make([]float64, count),
		colors:    make([]r3.Vector, count),
		sh:        make([]float64, count*DimForDegree(degree)*3),
	}
	for i := range c.rotations {
		c.rotations[i] = quat.Number{Real: 1}
	}
	return c
}

// Count returns the number of splats.
func (c *Cloud) Count() int { return len(c.positions) }

// SHDegree returns the spherical harmonics degree.
func (c *Cloud) SHDegree() int { return c.degree }

// SHDim returns the number of harmonic coefficients per splat.
func (c *Cloud) SHDim() int { return DimForDegree(c.degree) }

// Flags returns the cloud flags.
func (c *Cloud) Flags() Flags { return c.flags }

// Antialiased reports whether the cloud was trained with antialiasing.
func (c *Cloud) Antialiased() bool { return c.flags.Antialiased() }

// SetAntialiased sets or clears FlagAntialiased.
func (c *Cloud) SetAntialiased(v bool) {
	if v {
		c.flags |= FlagAntialiased
	} else {
		c.flags &^= FlagAntialiased
	}
}

// At returns a copy of splat i. It panics if i is out of range.
func (c *Cloud) At(i int) Gaussian {
	checkIndex(i, c.Count())
	g := Gaussian{
		Position: c.positions[i],
		Scale:    c.scales[i],
		Rotation: c.rotations[i],
		Alpha:    c.alphas[i],
		Color:    c.colors[i],
	}
	n := c.SHDim() * 3
	copy(g.SH[:n], c.sh[i*n:(i+1)*n])
	return g
}

// Set stores g at index i. Harmonic coefficients beyond SHDim are dropped.
// It panics if i is out of range.
func (c *Cloud) Set(i int, g Gaussian) {
	checkIndex(i, c.Count())
	c.positions[i] = g.Position
	c.scales[i] = g.Scale
	c.rotations[i] = g.Rotation
	c.alphas[i] = g.Alpha
	c.colors[i] = g.Color
	n := c.SHDim() * 3
	copy(c.sh[i*n:(i+1)*n], g.SH[:n])
}

// Positions returns the position column.
func (c *Cloud) Positions() []r3.Vector { return c.positions }

// Scales returns the log scale column.
func (c *Cloud) Scales() []r3.Vector { return c.scales }

// Rotations returns the rotation column.
func (c *Cloud) Rotations() []quat.Number { return c.rotations }

// Alphas returns the logit opacity column.
func (c *Cloud) Alphas() []float64 { return c.alphas }

// Colors returns the DC color column.
func (c *Cloud) Colors() []r3.Vector { return c.colors }

// Harmonics returns the harmonics column, SHDim()*3 values per splat in
// coefficient-major order.
func (c *Cloud) Harmonics() []float64 { return c.sh }

// Bounds returns the axis-aligned bounding box of all positions.
// An empty cloud yields the zero box.
func (c *Cloud) Bounds() (lo, hi r3.Vector) {
	if len(c.positions) == 0 {
		return lo, hi
	}
	lo, hi = c.positions[0], c.positions[0]
	for _, p := range c.positions[1:] {
		lo = r3.Vector{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = r3.Vector{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}

// Pack quantizes every splat into a new PackedCloud with the given position
// precision.
func (c *Cloud) Pack(fractionalBits uint8) (*PackedCloud, error) {
	p, err := NewPackedCloud(c.Count(), c.degree, fractionalBits, c.flags)
	if err != nil {
		return nil, err
	}
	for i := 0; i < c.Count(); i++ {
		g := c.At(i)
		p.Set(i, g.Pack(fractionalBits, c.SHDim()))
	}
	return p, nil
}

// validBits reports whether bits is a usable Fixed24 precision.
func validBits(bits uint8) bool {
	return bits <= fixed.MaxFractionalBits
}
