package synth

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/num/quat"

	"github.com/splatkit/spz"
)

func TestGenerate(t *testing.T) {
	s := Scene{Count: 500, SHDegree: 2, Radius: 3, Seed: 7}
	c, err := Generate(s)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if c.Count() != 500 || c.SHDegree() != 2 {
		t.Fatalf("Generate() = count %d degree %d", c.Count(), c.SHDegree())
	}

	for i := 0; i < c.Count(); i++ {
		g := c.At(i)
		if r := g.Position.Norm(); r < 0.8*3-1e-9 || r > 3+1e-9 {
			t.Fatalf("splat %d radius = %v, want in [2.4, 3]", i, r)
		}
		if n := quat.Abs(g.Rotation); math.Abs(n-1) > 1e-9 {
			t.Fatalf("splat %d rotation norm = %v, want 1", i, n)
		}
		if g.Alpha < -6 || g.Alpha >= 6 {
			t.Fatalf("splat %d alpha = %v, want in [-6, 6)", i, g.Alpha)
		}
	}

	again, err := Generate(s)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if again.At(123) != c.At(123) {
		t.Error("Generate() not reproducible for the same seed")
	}
}

func TestGenerate_Invalid(t *testing.T) {
	if _, err := Generate(Scene{Count: 1, SHDegree: 4}); err == nil {
		t.Error("Generate() with degree 4 should return error")
	}
}

func TestGenerateSet(t *testing.T) {
	clouds, err := GenerateSet(Scene{Count: 10, Radius: 1, Seed: 1}, 3)
	if err != nil {
		t.Fatalf("GenerateSet() error = %v", err)
	}
	if len(clouds) != 3 {
		t.Fatalf("GenerateSet() returned %d clouds, want 3", len(clouds))
	}
	if clouds[0].At(0) == clouds[1].At(0) {
		t.Error("GenerateSet() clouds share a seed")
	}
}

func TestLoadFiles(t *testing.T) {
	c, err := Generate(Scene{Count: 20, SHDegree: 1, Radius: 1, Seed: 3})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	var buf bytes.Buffer
	if err := spz.ToPLY(&buf, c); err != nil {
		t.Fatalf("ToPLY() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "scene.ply")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	clouds, err := LoadFiles([]string{path})
	if err != nil {
		t.Fatalf("LoadFiles() error = %v", err)
	}
	if clouds[0].Count() != 20 {
		t.Errorf("LoadFiles() count = %d, want 20", clouds[0].Count())
	}

	if _, err := LoadFiles([]string{filepath.Join(t.TempDir(), "missing.ply")}); err == nil {
		t.Error("LoadFiles() with missing file should return error")
	}
}
