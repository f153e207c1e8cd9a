// Package synth generates reproducible synthetic splat clouds and loads
// real ones for benchmarks.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/splatkit/spz"
)

// Scene controls the shape of a generated cloud.
type Scene struct {
	Count    int
	SHDegree int
	Radius   float64 // splats are spread over a sphere shell of this radius
	Seed     uint64
}

// DefaultScene is a small room-sized scene with full harmonics.
var DefaultScene = Scene{Count: 10_000, SHDegree: 3, Radius: 5, Seed: 1}

// Generate builds a cloud with values in the ranges trained splats use:
// log scales in [-7, -1], opacity logits in [-6, 6), DC colors in [-1.5, 1.5]
// and decaying higher-band harmonics.
func Generate(s Scene) (*spz.Cloud, error) {
	c, err := spz.NewCloud(s.Count, s.SHDegree, 0)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	dim := c.SHDim()

	for i := 0; i < s.Count; i++ {
		var g spz.Gaussian
		dir := r3.Vector{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if n := dir.Norm(); n > 0 {
			dir = dir.Mul(1 / n)
		}
		g.Position = dir.Mul(s.Radius * (0.8 + 0.2*rng.Float64()))
		g.Scale = r3.Vector{X: uniform(rng, -7, -1), Y: uniform(rng, -7, -1), Z: uniform(rng, -7, -1)}
		g.Rotation = randomRotation(rng)
		g.Alpha = uniform(rng, -6, 6)
		g.Color = r3.Vector{X: uniform(rng, -1.5, 1.5), Y: uniform(rng, -1.5, 1.5), Z: uniform(rng, -1.5, 1.5)}
		for k := 0; k < dim; k++ {
			amp := 0.3 / float64(1+k)
			for ch := 0; ch < 3; ch++ {
				g.SH.SetCoefficient(k, ch, uniform(rng, -amp, amp))
			}
		}
		c.Set(i, g)
	}
	return c, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// randomRotation returns a uniformly distributed unit quaternion.
func randomRotation(rng *rand.Rand) quat.Number {
	u1, u2, u3 := rng.Float64(), rng.Float64()*2*math.Pi, rng.Float64()*2*math.Pi
	a, b := math.Sqrt(1-u1), math.Sqrt(u1)
	return quat.Number{
		Real: a * math.Sin(u2),
		Imag: a * math.Cos(u2),
		Jmag: b * math.Sin(u3),
		Kmag: b * math.Cos(u3),
	}
}

// GenerateSet builds n clouds from base, varying the seed.
func GenerateSet(base Scene, n int) ([]*spz.Cloud, error) {
	clouds := make([]*spz.Cloud, 0, n)
	for i := 0; i < n; i++ {
		s := base
		s.Seed = base.Seed + uint64(i)
		c, err := Generate(s)
		if err != nil {
			return nil, err
		}
		clouds = append(clouds, c)
	}
	return clouds, nil
}

// LoadFiles reads PLY files from disk.
func LoadFiles(paths []string) ([]*spz.Cloud, error) {
	clouds := make([]*spz.Cloud, 0, len(paths))
	for _, p := range paths {
		c, err := loadFile(p)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", p, err)
		}
		clouds = append(clouds, c)
	}
	return clouds, nil
}

func loadFile(path string) (*spz.Cloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return spz.FromPLY(f)
}
