package splat

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/num/quat"
)

func TestDimForDegree(t *testing.T) {
	tests := []struct {
		degree int
		want   int
	}{
		{0, 0},
		{1, 3},
		{2, 8},
		{3, 15},
	}
	for _, tt := range tests {
		if got := DimForDegree(tt.degree); got != tt.want {
			t.Errorf("DimForDegree(%d) = %d, want %d", tt.degree, got, tt.want)
		}
		if got := DegreeForDim(tt.want); got != tt.degree {
			t.Errorf("DegreeForDim(%d) = %d, want %d", tt.want, got, tt.degree)
		}
	}
}

func TestDegreeForDim_Partial(t *testing.T) {
	tests := []struct {
		dim  int
		want int
	}{
		{1, 0},
		{2, 0},
		{5, 1},
		{7, 1},
		{14, 2},
		{20, 3},
	}
	for _, tt := range tests {
		if got := DegreeForDim(tt.dim); got != tt.want {
			t.Errorf("DegreeForDim(%d) = %d, want %d", tt.dim, got, tt.want)
		}
	}
}

func TestHarmonics_Transpose(t *testing.T) {
	var h Harmonics
	for k := 0; k < 15; k++ {
		for c := 0; c < 3; c++ {
			h.SetCoefficient(k, c, float64(100*c+k))
		}
	}

	cm := h.ToChannelMajor(15)
	// Reds first, then greens, then blues.
	for i := 0; i < 15; i++ {
		if cm[i] != float64(i) {
			t.Fatalf("ToChannelMajor()[%d] = %v, want %v", i, cm[i], float64(i))
		}
		if cm[15+i] != float64(100+i) {
			t.Fatalf("ToChannelMajor()[%d] = %v, want %v", 15+i, cm[15+i], float64(100+i))
		}
	}

	if back := cm.ToCoefficientMajor(15); back != h {
		t.Errorf("ToCoefficientMajor(ToChannelMajor()) = %v, want %v", back, h)
	}
}

func TestHarmonics_TransposePartialDim(t *testing.T) {
	var h Harmonics
	for i := 0; i < 9; i++ {
		h[i] = float64(i + 1)
	}
	cm := h.ToChannelMajor(3)
	want := Harmonics{1, 4, 7, 2, 5, 8, 3, 6, 9}
	if cm != want {
		t.Errorf("ToChannelMajor(3) = %v, want %v", cm, want)
	}
	if back := cm.ToCoefficientMajor(3); back != h {
		t.Errorf("ToCoefficientMajor(3) = %v, want %v", back, h)
	}
}

func TestHarmonics_CoefficientPanics(t *testing.T) {
	var h Harmonics
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("recover() = %v, want ErrIndexOutOfRange", r)
		}
	}()
	h.Coefficient(15, 0)
}

func testGaussian(i int) Gaussian {
	f := float64(i)
	g := Gaussian{
		Position: r3.Vector{X: f * 0.5, Y: -f * 0.25, Z: 1 + f},
		Scale:    r3.Vector{X: -3 + f*0.1, Y: -2, Z: -1},
		Rotation: quat.Number{Real: 0.9, Imag: 0.1 * f, Jmag: -0.2, Kmag: 0.3},
		Alpha:    math.Mod(f, 4) - 2,
		Color:    r3.Vector{X: 0.5, Y: 1, Z: 1.5},
	}
	for k := range g.SH {
		g.SH[k] = math.Sin(f + float64(k))
	}
	return g
}

func TestCloud_SetAt(t *testing.T) {
	c, err := NewCloud(4, 3, FlagAntialiased)
	if err != nil {
		t.Fatalf("NewCloud() error = %v", err)
	}
	for i := 0; i < c.Count(); i++ {
		c.Set(i, testGaussian(i))
	}
	for i := 0; i < c.Count(); i++ {
		if diff := cmp.Diff(testGaussian(i), c.At(i)); diff != "" {
			t.Errorf("At(%d) mismatch (-want +got):\n%s", i, diff)
		}
	}
	if !c.Antialiased() {
		t.Error("Antialiased() = false, want true")
	}
	if got := len(c.Harmonics()); got != 4*45 {
		t.Errorf("len(Harmonics()) = %d, want %d", got, 4*45)
	}
}

func TestCloud_SetDropsHigherHarmonics(t *testing.T) {
	c, err := NewCloud(1, 1, 0)
	if err != nil {
		t.Fatalf("NewCloud() error = %v", err)
	}
	c.Set(0, testGaussian(2))
	got := c.At(0)
	for k := 9; k < MaxComponents; k++ {
		if got.SH[k] != 0 {
			t.Fatalf("At(0).SH[%d] = %v, want 0", k, got.SH[k])
		}
	}
}

func TestCloud_IdentityRotation(t *testing.T) {
	c, err := NewCloud(2, 0, 0)
	if err != nil {
		t.Fatalf("NewCloud() error = %v", err)
	}
	if got := c.At(1).Rotation; got != (quat.Number{Real: 1}) {
		t.Errorf("At(1).Rotation = %v, want identity", got)
	}
}

func TestCloud_IndexOutOfRange(t *testing.T) {
	c, err := NewCloud(2, 0, 0)
	if err != nil {
		t.Fatalf("NewCloud() error = %v", err)
	}
	for _, i := range []int{-1, 2} {
		func() {
			defer func() {
				err, ok := recover().(error)
				if !ok || !errors.Is(err, ErrIndexOutOfRange) {
					t.Errorf("At(%d) panic = %v, want ErrIndexOutOfRange", i, err)
				}
			}()
			c.At(i)
		}()
	}
}

func TestNewCloud_Invalid(t *testing.T) {
	if _, err := NewCloud(1, 4, 0); !errors.Is(err, ErrInvalidDegree) {
		t.Errorf("NewCloud(degree 4) error = %v, want ErrInvalidDegree", err)
	}
	if _, err := NewCloud(-1, 0, 0); err == nil {
		t.Error("NewCloud(-1) should return error")
	}
	if _, err := NewPackedCloud(1, 0, 24, 0); !errors.Is(err, ErrInvalidFractionalBits) {
		t.Errorf("NewPackedCloud(bits 24) error = %v, want ErrInvalidFractionalBits", err)
	}
}

func TestCloud_Bounds(t *testing.T) {
	c, err := NewCloud(3, 0, 0)
	if err != nil {
		t.Fatalf("NewCloud() error = %v", err)
	}
	c.Positions()[0] = r3.Vector{X: 1, Y: 2, Z: 3}
	c.Positions()[1] = r3.Vector{X: -1, Y: 5, Z: 0}
	c.Positions()[2] = r3.Vector{X: 0, Y: 0, Z: 9}
	lo, hi := c.Bounds()
	if want := (r3.Vector{X: -1, Y: 0, Z: 0}); lo != want {
		t.Errorf("Bounds() lo = %v, want %v", lo, want)
	}
	if want := (r3.Vector{X: 1, Y: 5, Z: 9}); hi != want {
		t.Errorf("Bounds() hi = %v, want %v", hi, want)
	}
}

func TestCloud_PackUnpack(t *testing.T) {
	c, err := NewCloud(16, 3, FlagAntialiased)
	if err != nil {
		t.Fatalf("NewCloud() error = %v", err)
	}
	for i := 0; i < c.Count(); i++ {
		c.Set(i, testGaussian(i))
	}

	p, err := c.Pack(DefaultFractionalBits)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if p.Count() != 16 || p.SHDegree() != 3 || !p.Antialiased() {
		t.Fatalf("Pack() = count %d degree %d antialiased %v", p.Count(), p.SHDegree(), p.Antialiased())
	}

	u := p.Unpack()
	for i := 0; i < c.Count(); i++ {
		want, got := c.At(i), u.At(i)
		if d := got.Position.Sub(want.Position).Norm(); d > 1.0/4096 {
			t.Errorf("splat %d position error = %v", i, d)
		}
		if d := math.Abs(got.Alpha - want.Alpha); d > 0.65 {
			t.Errorf("splat %d alpha error = %v", i, d)
		}
		for k := 0; k < MaxComponents; k++ {
			tol := 0.066
			if k < 9 {
				tol = 0.036
			}
			if d := math.Abs(got.SH[k] - want.SH[k]); d > tol {
				t.Errorf("splat %d SH[%d] error = %v, want <= %v", i, k, d, tol)
			}
		}
	}
}

func TestPackedCloud_SetAt(t *testing.T) {
	p, err := NewPackedCloud(3, 1, 12, 0)
	if err != nil {
		t.Fatalf("NewPackedCloud() error = %v", err)
	}
	g := testGaussian(1)
	pg := g.Pack(12, 3)
	p.Set(1, pg)
	if diff := cmp.Diff(pg, p.At(1)); diff != "" {
		t.Errorf("At(1) mismatch (-want +got):\n%s", diff)
	}
	if got, want := p.Size(), 3*(9+1+3+3+3+9); got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
}

func TestPackedCloud_Empty(t *testing.T) {
	c, err := NewCloud(0, 2, 0)
	if err != nil {
		t.Fatalf("NewCloud() error = %v", err)
	}
	p, err := c.Pack(DefaultFractionalBits)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if p.Size() != 0 {
		t.Errorf("Size() = %d, want 0", p.Size())
	}
	if u := p.Unpack(); u.Count() != 0 || u.SHDegree() != 2 {
		t.Errorf("Unpack() = count %d degree %d, want 0, 2", u.Count(), u.SHDegree())
	}
}

func TestFormatError(t *testing.T) {
	err := error(&FormatError{Format: "spz", Reason: "unexpected end of stream", Err: ErrEndOfStream})
	if got, want := err.Error(), "spz: unexpected end of stream"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrEndOfStream) {
		t.Error("errors.Is(err, ErrEndOfStream) = false, want true")
	}
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Format != "spz" {
		t.Errorf("errors.As() = %v, want *FormatError", fe)
	}
}
