package spzfile

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/num/quat"

	"github.com/splatkit/spz/internal/codec"
	"github.com/splatkit/spz/internal/codec/gzipcodec"
	"github.com/splatkit/spz/internal/codec/noopcodec"
	"github.com/splatkit/spz/internal/codec/zstdcodec"
	"github.com/splatkit/spz/internal/splat"
)

func packedFixture(t *testing.T, count, degree int, flags splat.Flags) *splat.PackedCloud {
	t.Helper()
	c, err := splat.NewCloud(count, degree, flags)
	if err != nil {
		t.Fatalf("NewCloud() error = %v", err)
	}
	for i := 0; i < count; i++ {
		f := float64(i)
		g := splat.Gaussian{
			Position: r3.Vector{X: f, Y: -f / 2, Z: 3},
			Scale:    r3.Vector{X: -2, Y: -1.5, Z: -1},
			Rotation: quat.Number{Real: 1, Imag: 0.1 * f},
			Alpha:    0.5,
			Color:    r3.Vector{X: 0.2, Y: 0.4, Z: 0.6},
		}
		for k := range g.SH {
			g.SH[k] = float64(k%7)/7 - 0.5
		}
		c.Set(i, g)
	}
	p, err := c.Pack(splat.DefaultFractionalBits)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	return p
}

func encode(t *testing.T, p *splat.PackedCloud, c codec.Codec) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, p, c); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return buf.Bytes()
}

func comparePacked(t *testing.T, want, got *splat.PackedCloud) {
	t.Helper()
	if got.Count() != want.Count() || got.SHDegree() != want.SHDegree() ||
		got.FractionalBits() != want.FractionalBits() || got.Flags() != want.Flags() {
		t.Fatalf("Read() = count %d degree %d bits %d flags %d, want %d %d %d %d",
			got.Count(), got.SHDegree(), got.FractionalBits(), got.Flags(),
			want.Count(), want.SHDegree(), want.FractionalBits(), want.Flags())
	}
	if diff := cmp.Diff(want.Columns(), got.Columns()); diff != "" {
		t.Errorf("Columns() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	codecs := []codec.Codec{gzipcodec.New(), zstdcodec.New(), noopcodec.New()}
	for _, c := range codecs {
		for degree := 0; degree <= 3; degree++ {
			t.Run(c.Name(), func(t *testing.T) {
				want := packedFixture(t, 10, degree, splat.FlagAntialiased)
				got, err := Read(bytes.NewReader(encode(t, want, c)), c)
				if err != nil {
					t.Fatalf("Read() error = %v", err)
				}
				comparePacked(t, want, got)
			})
		}
	}
}

func TestWrite_GzipLayout(t *testing.T) {
	p := packedFixture(t, 2, 1, 0)
	data := encode(t, p, gzipcodec.New())

	// Standard SPZ files are plain gzip streams.
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	want := []byte{0x4E, 0x47, 0x53, 0x50, 2, 0, 0, 0, 2, 0, 0, 0, 1, 12, 0, 0}
	if !bytes.Equal(raw[:HeaderSize], want) {
		t.Errorf("header = % x, want % x", raw[:HeaderSize], want)
	}
	if got, wantLen := len(raw), HeaderSize+p.Size(); got != wantLen {
		t.Errorf("decompressed size = %d, want %d", got, wantLen)
	}
	// Positions come first: splat 1 has x = 1.0, 4096 at 12 fractional bits.
	if got := raw[HeaderSize+9 : HeaderSize+12]; !bytes.Equal(got, []byte{0x00, 0x10, 0x00}) {
		t.Errorf("position[1].x = % x, want 00 10 00", got)
	}
}

func TestWriteRead_Empty(t *testing.T) {
	want := packedFixture(t, 0, 0, 0)
	got, err := Read(bytes.NewReader(encode(t, want, gzipcodec.New())), gzipcodec.New())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Count() != 0 {
		t.Errorf("Count() = %d, want 0", got.Count())
	}
}

func rawStream(t *testing.T, h Header, body []byte) []byte {
	t.Helper()
	b, err := h.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(b)
	zw.Write(body)
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func TestRead_Malformed(t *testing.T) {
	good := Header{Magic: Magic, Version: Version, NumPoints: 1, SHDegree: 0, FractionalBits: 12}
	with := func(f func(*Header)) Header {
		h := good
		f(&h)
		return h
	}

	full := encode(t, packedFixture(t, 4, 2, 0), gzipcodec.New())
	exact := rawStream(t, good, make([]byte, 19))
	badCRC := append([]byte(nil), exact...)
	badCRC[len(badCRC)-8] ^= 0xff

	tests := []struct {
		name   string
		data   []byte
		reason string
	}{
		{"wrong magic", rawStream(t, with(func(h *Header) { h.Magic = 0x12345678 }), make([]byte, 19)), "invalid magic"},
		{"wrong version", rawStream(t, with(func(h *Header) { h.Version = 3 }), make([]byte, 19)), "unsupported version"},
		{"too many points", rawStream(t, with(func(h *Header) { h.NumPoints = MaxPoints + 1 }), nil), "too many points"},
		{"degree too high", rawStream(t, with(func(h *Header) { h.SHDegree = 4 }), make([]byte, 19)), "unsupported spherical harmonics degree"},
		{"fractional bits", rawStream(t, with(func(h *Header) { h.FractionalBits = 30 }), make([]byte, 19)), "invalid fractional bits"},
		{"short header", rawStream(t, good, nil)[:0], "unexpected end of stream"},
		{"truncated body", rawStream(t, good, make([]byte, 10)), "unexpected end of stream"},
		{"truncated compressed stream", full[:len(full)/2], "unexpected end of stream"},
		{"not gzip", []byte("definitely not a gzip stream"), "invalid gzip stream"},
		{"trailing data", rawStream(t, good, make([]byte, 20)), "trailing data after body"},
		{"bad checksum", badCRC, "corrupt stream"},
		{"missing trailer", exact[:len(exact)-8], "unexpected end of stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Read(bytes.NewReader(tt.data), gzipcodec.New())
			if p != nil {
				t.Errorf("Read() cloud = %v, want nil", p)
			}
			var fe *splat.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("Read() error = %v, want FormatError", err)
			}
			if fe.Format != Extension || !strings.HasPrefix(fe.Reason, tt.reason) {
				t.Errorf("Read() error = %q, want reason %q", err, tt.reason)
			}
		})
	}
}

func TestRead_ExactBody(t *testing.T) {
	h := Header{Magic: Magic, Version: Version, NumPoints: 1, FractionalBits: 12}
	p, err := Read(bytes.NewReader(rawStream(t, h, make([]byte, 19))), gzipcodec.New())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if p.Count() != 1 {
		t.Errorf("Count() = %d, want 1", p.Count())
	}
}

func TestRead_TrailingDataNoop(t *testing.T) {
	data := encode(t, packedFixture(t, 2, 0, 0), noopcodec.New())
	data = append(data, 0)
	if _, err := Read(bytes.NewReader(data), noopcodec.New()); err == nil {
		t.Error("Read() with trailing byte should return error")
	}
}

func TestRead_TruncatedWrapsEndOfStream(t *testing.T) {
	h := Header{Magic: Magic, Version: Version, NumPoints: 2, FractionalBits: 12}
	_, err := Read(bytes.NewReader(rawStream(t, h, make([]byte, 3))), gzipcodec.New())
	if !errors.Is(err, splat.ErrEndOfStream) {
		t.Errorf("Read() error = %v, want ErrEndOfStream", err)
	}
}

func TestReadHeader(t *testing.T) {
	p := packedFixture(t, 7, 3, splat.FlagAntialiased)
	h, err := ReadHeader(bytes.NewReader(encode(t, p, zstdcodec.New())), zstdcodec.New())
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	want := &Header{Magic: Magic, Version: Version, NumPoints: 7, SHDegree: 3, FractionalBits: 12, Flags: splat.FlagAntialiased}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("ReadHeader() mismatch (-want +got):\n%s", diff)
	}
	if got, wantSize := h.BodySize(), p.Size(); got != wantSize {
		t.Errorf("BodySize() = %d, want %d", got, wantSize)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_ReportsFlushError(t *testing.T) {
	p := packedFixture(t, 3, 0, 0)
	if err := Write(failingWriter{}, p, gzipcodec.New()); err == nil {
		t.Error("Write() to failing writer should return error")
	}
}
