package splat

import (
	"fmt"

	"github.com/splatkit/spz/internal/quant"
)

// PackedCloud stores quantized splats column by column, one byte slice per
// attribute in the same layout the container body uses.
type PackedCloud struct {
	degree    int
	bits      uint8
	flags     Flags
	count     int
	positions []byte
	alphas    []byte
	colors    []byte
	scales    []byte
	rotations []byte
	sh        []byte
}

// Bytes per splat for each packed column.
const (
	PositionSize = 9
	AlphaSize    = 1
	ColorSize    = 3
	ScaleSize    = 3
	RotationSize = 3
)

// NewPackedCloud allocates a packed cloud of count splats.
func NewPackedCloud(count, degree int, fractionalBits uint8, flags Flags) (*PackedCloud, error) {
	if count < 0 {
		return nil, fmt.Errorf("splat: negative count %d", count)
	}
	if !validDegree(degree) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDegree, degree)
	}
	if !validBits(fractionalBits) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFractionalBits, fractionalBits)
	}
	return &PackedCloud{
		degree:    degree,
		bits:      fractionalBits,
		flags:     flags,
		count:     count,
		positions: make([]byte, count*PositionSize),
		alphas:    make([]byte, count*AlphaSize),
		colors:    make([]byte, count*ColorSize),
		scales:    make([]byte, count*ScaleSize),
		rotations: make([]byte, count*RotationSize),
		sh:        make([]byte, count*DimForDegree(degree)*3),
	}, nil
}

// Count returns the number of splats.
func (p *PackedCloud) Count() int { return p.count }

// SHDegree returns the spherical harmonics degree.
func (p *PackedCloud) SHDegree() int { return p.degree }

// SHDim returns the number of harmonic coefficients per splat.
func (p *PackedCloud) SHDim() int { return DimForDegree(p.degree) }

// FractionalBits returns the fixed-point precision of positions.
func (p *PackedCloud) FractionalBits() uint8 { return p.bits }

// Flags returns the cloud flags.
func (p *PackedCloud) Flags() Flags { return p.flags }

// Antialiased reports whether the cloud was trained with antialiasing.
func (p *PackedCloud) Antialiased() bool { return p.flags.Antialiased() }

// SetAntialiased sets or clears FlagAntialiased.
func (p *PackedCloud) SetAntialiased(v bool) {
	if v {
		p.flags |= FlagAntialiased
	} else {
		p.flags &^= FlagAntialiased
	}
}

// At returns a copy of packed splat i. It panics if i is out of range.
func (p *PackedCloud) At(i int) PackedGaussian {
	checkIndex(i, p.count)
	var g PackedGaussian
	for a := 0; a < 3; a++ {
		copy(g.Position[a][:], p.positions[i*PositionSize+a*3:])
	}
	g.Alpha = quant.Alpha(p.alphas[i])
	copy(g.Color[:], p.colors[i*ColorSize:])
	copy(g.Scale[:], p.scales[i*ScaleSize:])
	copy(g.Rotation[:], p.rotations[i*RotationSize:])
	n := p.SHDim() * 3
	copy(g.SH[:n], p.sh[i*n:(i+1)*n])
	return g
}

// Set stores g at index i. It panics if i is out of range.
func (p *PackedCloud) Set(i int, g PackedGaussian) {
	checkIndex(i, p.count)
	for a := 0; a < 3; a++ {
		copy(p.positions[i*PositionSize+a*3:], g.Position[a][:])
	}
	p.alphas[i] = byte(g.Alpha)
	copy(p.colors[i*ColorSize:], g.Color[:])
	copy(p.scales[i*ScaleSize:], g.Scale[:])
	copy(p.rotations[i*RotationSize:], g.Rotation[:])
	n := p.SHDim() * 3
	copy(p.sh[i*n:(i+1)*n], g.SH[:n])
}

// Gaussian returns splat i unquantized.
func (p *PackedCloud) Gaussian(i int) Gaussian {
	g := p.At(i)
	return g.Unpack(p.bits, p.SHDim())
}

// Unpack restores every splat into a new Cloud.
func (p *PackedCloud) Unpack() *Cloud {
	// Count and degree were validated by NewPackedCloud.
	c := newCloud(p.count, p.degree, p.flags)
	for i := 0; i < p.count; i++ {
		c.Set(i, p.Gaussian(i))
	}
	return c
}

// Columns returns the packed columns in container body order: positions,
// alphas, colors, scales, rotations, harmonics. The slices alias the cloud.
func (p *PackedCloud) Columns() [][]byte {
	return [][]byte{p.positions, p.alphas, p.colors, p.scales, p.rotations, p.sh}
}

// Size returns the total number of body bytes.
func (p *PackedCloud) Size() int {
	n := 0
	for _, col := range p.Columns() {
		n += len(col)
	}
	return n
}
