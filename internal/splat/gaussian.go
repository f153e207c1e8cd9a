package splat

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/splatkit/spz/internal/fixed"
	"github.com/splatkit/spz/internal/quant"
)

// Gaussian is a single splat with unquantized attributes.
type Gaussian struct {
	// Position in world units.
	Position r3.Vector
	// Scale is the per-axis log scale.
	Scale r3.Vector
	// Rotation is the orientation quaternion; Real is W.
	Rotation quat.Number
	// Alpha is the opacity in logit space.
	Alpha float64
	// Color is the DC spherical harmonic term.
	Color r3.Vector
	// SH holds the higher order harmonics, coefficient-major.
	SH Harmonics
}

// PackedGaussian is a single splat with quantized attributes.
type PackedGaussian struct {
	Position fixed.Vector3
	Scale    quant.Scale
	Rotation quant.Quat
	Alpha    quant.Alpha
	Color    quant.Color
	SH       [MaxComponents]byte
}

// Pack quantizes g, keeping the first dim harmonic coefficients.
func (g *Gaussian) Pack(bits uint8, dim int) PackedGaussian {
	p := PackedGaussian{
		Position: fixed.FromVector(g.Position, bits),
		Scale:    quant.EncodeScale(g.Scale),
		Rotation: quant.EncodeQuat(g.Rotation),
		Alpha:    quant.EncodeAlpha(g.Alpha),
		Color:    quant.EncodeColor(g.Color),
	}
	quant.EncodeHarmonics(p.SH[:dim*3], g.SH[:dim*3])
	return p
}

// Unpack restores the first dim harmonic coefficients and every other attribute.
func (p *PackedGaussian) Unpack(bits uint8, dim int) Gaussian {
	g := Gaussian{
		Position: p.Position.Vector(bits),
		Scale:    p.Scale.Decode(),
		Rotation: p.Rotation.Decode(),
		Alpha:    p.Alpha.Decode(),
		Color:    p.Color.Decode(),
	}
	quant.DecodeHarmonics(g.SH[:dim*3], p.SH[:dim*3])
	return g
}
